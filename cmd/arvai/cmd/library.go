package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/domain"
	"github.com/MrSnakeDoc/arvai/internal/library"
)

var (
	filterFlag string
	showScores bool
	addTitle   string
	addDesc    string
	addTags    []string
	addFavicon string
)

var listCmd = &cobra.Command{
	Use:   "list [query...]",
	Short: "List bookmarks, newest first",
	Long: `List the library through a filter and an optional query.

Examples:
  arvai list
  arvai list --filter favorites
  arvai list --filter recent react docs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := domain.ParseFilter(filterFlag)
		if err != nil {
			return err
		}
		items := sess.lib.View(filter, strings.Join(args, " "))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No bookmarks found"))
			return nil
		}
		for _, b := range items {
			printBookmarkLine(cmd.OutOrStdout(), b)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Rank bookmarks against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := domain.ParseFilter(filterFlag)
		if err != nil {
			return err
		}
		ranked := sess.lib.Rank(filter, strings.Join(args, " "))
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), ranked)
		}
		if len(ranked) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No bookmarks found"))
			return nil
		}
		for _, c := range ranked {
			if showScores {
				fmt.Fprint(cmd.OutOrStdout(), scoreStyle.Render(fmt.Sprintf("%3d ", c.Score)))
			}
			printBookmarkLine(cmd.OutOrStdout(), c.Bookmark)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a bookmark to the library",
	Long: `Add a bookmark. The title defaults to the page title when it can be fetched.

Examples:
  arvai add https://go.dev/doc --tag go --tag docs
  arvai add https://example.com --title "Example" --description "placeholder site"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		form := domain.BookmarkForm{
			URL:         args[0],
			Title:       addTitle,
			Description: addDesc,
			Tags:        addTags,
			Favicon:     addFavicon,
		}
		if form.Title == "" || form.Favicon == "" {
			if meta, err := sess.bg.PageData(ctx, form.URL); err == nil {
				form.Title = firstSet(form.Title, meta.Title)
				form.Description = firstSet(form.Description, meta.Description)
				form.Favicon = firstSet(form.Favicon, meta.Favicon)
			}
		}

		b, err := sess.lib.Add(ctx, form)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), b)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Added:")
		printBookmarkLine(cmd.OutOrStdout(), b)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := resolveBookmark(args[0])
		if err != nil {
			return err
		}
		if err := sess.lib.Remove(cmd.Context(), b.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", b.Title, shortID(b.ID))
		return nil
	},
}

var favCmd = &cobra.Command{
	Use:   "fav <id>",
	Short: "Toggle the favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := resolveBookmark(args[0])
		if err != nil {
			return err
		}
		b, err = sess.lib.ToggleFavorite(cmd.Context(), b.ID)
		if err != nil {
			return err
		}
		state := "removed from favorites"
		if b.IsFavorite {
			state = "added to favorites"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", b.Title, state)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := resolveBookmark(args[0])
		if err != nil {
			return err
		}
		if err := sess.lib.Select(b.ID); err != nil {
			return err
		}
		selected, ok := sess.lib.Selected()
		if !ok {
			return library.ErrNotFound
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), selected)
		}
		printBookmarkDetail(cmd.OutOrStdout(), selected)
		return nil
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags by usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := sess.lib.Tags()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), counts)
		}
		for _, tc := range counts {
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", tc.Count, renderTag(tc.Tag))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := sess.lib.Stats()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), st)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total      %d\nfavorites  %d\nrecent     %d\n",
			st.Total, st.Favorites, st.Recent)
		return nil
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a bookmark URL to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := resolveBookmark(args[0])
		if err != nil {
			return err
		}
		// A missing clipboard is not an error, the URL is printed anyway.
		if err := clipboard.WriteAll(b.URL); err != nil {
			sess.log.Debugf("clipboard unavailable: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), b.URL)
		return nil
	},
}

// resolveBookmark accepts a full id or an unambiguous prefix of one.
func resolveBookmark(ref string) (domain.Bookmark, error) {
	if b, err := sess.lib.Get(ref); err == nil {
		return b, nil
	}

	var match []domain.Bookmark
	for _, b := range sess.lib.Bookmarks() {
		if strings.HasPrefix(b.ID, ref) {
			match = append(match, b)
		}
	}
	switch len(match) {
	case 0:
		return domain.Bookmark{}, fmt.Errorf("%w: %q", library.ErrNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return domain.Bookmark{}, errors.New("ambiguous id " + ref + ", use more characters")
	}
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	listCmd.Flags().StringVarP(&filterFlag, "filter", "f", string(domain.FilterAll), "all | recent | favorites")
	searchCmd.Flags().StringVarP(&filterFlag, "filter", "f", string(domain.FilterAll), "all | recent | favorites")
	searchCmd.Flags().BoolVar(&showScores, "scores", false, "print the match score")

	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "title (default: page title)")
	addCmd.Flags().StringVarP(&addDesc, "description", "d", "", "description")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag, repeatable or comma separated")
	addCmd.Flags().StringVar(&addFavicon, "favicon", "", "favicon URL")

	rootCmd.AddCommand(listCmd, searchCmd, addCmd, rmCmd, favCmd, showCmd, tagsCmd, statsCmd, copyCmd)
}
