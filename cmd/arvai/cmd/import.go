package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/scheduler"
)

var (
	homepageBookmarks string
	homepageServices  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import bookmarks from other tools",
}

var importHomepageCmd = &cobra.Command{
	Use:   "homepage",
	Short: "Import a gethomepage.dev bookmarks.yaml and services.yaml",
	Long: `Add every Homepage bookmark and service with a web link to the library.
URLs already in the library are skipped.

Examples:
  arvai import homepage --bookmarks ~/homepage/config/bookmarks.yaml
  arvai import homepage --services ~/homepage/config/services.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bookmarks := firstSet(homepageBookmarks, sess.cfg.Local.HomepageBookmarks)
		services := firstSet(homepageServices, sess.cfg.Local.HomepageServices)
		if bookmarks == "" && services == "" {
			return fmt.Errorf("nothing to import, pass --bookmarks or --services")
		}

		importer := scheduler.NewHomepageImporter(bookmarks, services, sess.lib, sess.log, 0, nil)
		res, err := importer.Import(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Read %d entries: %d added, %d skipped\n", res.Read, res.Added, res.Skipped)
		return nil
	},
}

func init() {
	importHomepageCmd.Flags().StringVar(&homepageBookmarks, "bookmarks", "", "path to bookmarks.yaml")
	importHomepageCmd.Flags().StringVar(&homepageServices, "services", "", "path to services.yaml")

	importCmd.AddCommand(importHomepageCmd)
	rootCmd.AddCommand(importCmd)
}
