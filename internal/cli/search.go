package cli

import (
	"github.com/spf13/cobra"

	"aursync/internal/aur"
	"aursync/internal/output"
)

var searchCmd = &cobra.Command{
	Use:   "search <expression>",
	Short: "Search for packages in the AUR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := aur.NewClient(aur.WithVerbose(cfg.Runtime.Verbose, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		pkgs, err := client.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output.SearchResults(cmd.OutOrStdout(), pkgs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
