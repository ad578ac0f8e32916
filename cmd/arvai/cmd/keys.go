package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/apiclient"
	"github.com/MrSnakeDoc/arvai/internal/extension"
)

var keysServer string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage kernel API keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an API key and print its connection URL",
	Long: `Create an API key on the kernel. The request must come from an address
in server.allowed_cidrs. The full key is shown once.

Examples:
  arvai keys create laptop
  arvai keys create --server http://10.0.0.5:8731 work`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "cli"
		if len(args) == 1 {
			name = args[0]
		}
		server := firstSet(keysServer, sess.cfg.ServerURL())

		created, err := apiclient.New(server, "").CreateAPIKey(cmd.Context(), name)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), created)
		}

		link, err := extension.BuildConnectionURL(server, created.Key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Key %q created (%s...)\n\n  %s\n\nConnect with: arvai ext connect %q\n",
			created.Name, created.KeyPrefix, created.Key, link)
		return nil
	},
}

func init() {
	keysCreateCmd.Flags().StringVar(&keysServer, "server", "", "kernel URL (default from server.host/port)")

	keysCmd.AddCommand(keysCreateCmd)
	rootCmd.AddCommand(keysCmd)
}
