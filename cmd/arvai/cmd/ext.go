package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/extension"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

var (
	saveTitle   string
	saveDesc    string
	saveTags    []string
	unsaveURL   string
	tabLoading  bool
	tabActivate bool
)

var extCmd = &cobra.Command{
	Use:   "ext",
	Short: "Act as the browser extension against an Arvai kernel",
	Long: `The ext commands play the extension popup: they connect to a kernel,
check and toggle the saved state of pages and report tab icons.

Messages go to the agent when "arvai agent" is running, otherwise they
are handled in-process.`,
}

var extConnectCmd = &cobra.Command{
	Use:   "connect <connection-url>",
	Short: "Connect to a kernel",
	Long: `Connect with the URL shown by the kernel when a key is created.

Examples:
  arvai ext connect "http://127.0.0.1:8731/?key=arvai_0123..."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := sess.conns.Connect(ctx, args[0])
		if err != nil {
			return err
		}
		if err := sess.send(ctx, extension.Message{Type: extension.MsgConnectionChanged}, nil); err != nil {
			sess.log.Warn("failed to notify connection change", logger.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", cfg.Server)
		return nil
	},
}

var extDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the kernel connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := sess.conns.Disconnect(ctx); err != nil {
			return err
		}
		if err := sess.send(ctx, extension.Message{Type: extension.MsgConnectionChanged}, nil); err != nil {
			sess.log.Warn("failed to notify connection change", logger.Error(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Disconnected")
		return nil
	},
}

var extStatusCmd = &cobra.Command{
	Use:   "status [url]",
	Short: "Show the connection, or whether a page is saved",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			cfg, err := sess.conns.Get(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, cfg)
			}
			if cfg == nil || !cfg.Connected {
				fmt.Fprintln(out, "Not connected")
				return nil
			}
			verified := "never"
			if cfg.LastVerified != nil {
				verified = relative(*cfg.LastVerified)
			}
			fmt.Fprintf(out, "Connected to %s (verified %s)\n", cfg.Server, verified)
			return nil
		}

		var res extension.StatusResult
		if err := sess.send(ctx, extension.Message{Type: extension.MsgCheckStatus, URL: args[0]}, &res); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		switch {
		case !res.Connected:
			fmt.Fprintln(out, extension.TitleConnect)
		case res.Error != "":
			fmt.Fprintf(out, "Unknown: %s\n", res.Error)
		case res.Bookmarked && res.BookmarkID != nil:
			saved := ""
			if res.CreatedAt != nil {
				saved = " " + relative(*res.CreatedAt)
			}
			fmt.Fprintf(out, "%s (id %d)%s\n", extension.TitleSaved, *res.BookmarkID, saved)
		case res.Bookmarked:
			fmt.Fprintln(out, extension.TitleSaved)
		default:
			fmt.Fprintln(out, "Not saved")
		}
		return nil
	},
}

var extSaveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Save a page to the kernel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data := extension.BookmarkData{
			URL:         args[0],
			Title:       saveTitle,
			Description: saveDesc,
			Tags:        saveTags,
		}

		var meta extension.PageMetadata
		if err := sess.send(ctx, extension.Message{Type: extension.MsgGetPageData, URL: data.URL}, &meta); err != nil {
			sess.log.Warn("failed to read page metadata", logger.String("url", data.URL), logger.Error(err))
		} else {
			data.Title = firstSet(data.Title, meta.Title)
			data.Description = firstSet(data.Description, meta.Description)
			data.Favicon = meta.Favicon
		}

		var res extension.AddResponse
		if err := sess.send(ctx, extension.Message{Type: extension.MsgAddBookmark, Data: &data}, &res); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (id %d)\n", res.Bookmark.Title, res.Bookmark.ID)
		return nil
	},
}

var extUnsaveCmd = &cobra.Command{
	Use:   "unsave <bookmark-id>",
	Short: "Delete a saved page from the kernel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid bookmark id %q", args[0])
		}

		var res extension.SuccessResponse
		msg := extension.Message{Type: extension.MsgRemoveBookmark, BookmarkID: id, URL: unsaveURL}
		if err := sess.send(cmd.Context(), msg, &res); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %d\n", id)
		return nil
	},
}

var extPageCmd = &cobra.Command{
	Use:   "page [url]",
	Short: "Print the metadata the extension would save",
	Long: `Fetch a page and print its title, description and favicon.
Without a url the active tab's page is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := extension.Message{Type: extension.MsgGetPageData}
		if len(args) == 1 {
			msg.URL = args[0]
		}
		var meta extension.PageMetadata
		if err := sess.send(cmd.Context(), msg, &meta); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), meta)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "title:       %s\ndescription: %s\nfavicon:     %s\n",
			meta.Title, meta.Description, meta.Favicon)
		return nil
	},
}

var extTabCmd = &cobra.Command{
	Use:   "tab <tab-id> <url>",
	Short: "Report a tab and print its icon",
	Long: `Tell the background a tab finished loading (or was activated with
--activate) and print the icon it painted.

Examples:
  arvai ext tab 7 https://go.dev
  arvai ext tab 7 https://go.dev --activate`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tabID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid tab id %q", args[0])
		}

		msg := extension.Message{Type: extension.MsgTabUpdated, TabID: tabID, URL: args[1], Status: "complete"}
		if tabLoading {
			msg.Status = "loading"
		}
		if tabActivate {
			msg = extension.Message{Type: extension.MsgTabActivated, TabID: tabID, URL: args[1]}
		}
		if err := sess.send(ctx, msg, nil); err != nil {
			return err
		}

		var badge extension.Badge
		if err := sess.send(ctx, extension.Message{Type: extension.MsgGetBadge, TabID: tabID}, &badge); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), badge)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tab %d: %s icon, %q\n", badge.TabID, badge.Icon, badge.Title)
		return nil
	},
}

func init() {
	extSaveCmd.Flags().StringVarP(&saveTitle, "title", "t", "", "title (default: page title)")
	extSaveCmd.Flags().StringVarP(&saveDesc, "description", "d", "", "description (default: page description)")
	extSaveCmd.Flags().StringSliceVar(&saveTags, "tag", nil, "tag, repeatable or comma separated")
	extUnsaveCmd.Flags().StringVar(&unsaveURL, "url", "", "page URL, refreshes its cached status")
	extTabCmd.Flags().BoolVar(&tabLoading, "loading", false, "report the tab as still loading")
	extTabCmd.Flags().BoolVar(&tabActivate, "activate", false, "report a tab switch instead of a load")

	extCmd.AddCommand(extConnectCmd, extDisconnectCmd, extStatusCmd, extSaveCmd, extUnsaveCmd, extPageCmd, extTabCmd)
	rootCmd.AddCommand(extCmd)
}
