package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"aursync/internal/aur"
	"aursync/internal/gitrepo"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <package>",
	Short: "Clone a package repository from the AUR",
	Long: `Look the package up in the AUR registry and clone its git repository
into the repos root.

Examples:
	aursync clone yay
	aursync /tmp/repos clone yay`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		root, err := cfg.ResolveRoot()
		if err != nil {
			return err
		}

		client, err := aur.NewClient(aur.WithVerbose(cfg.Runtime.Verbose, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		if _, err := client.Info(cmd.Context(), name); err != nil {
			return fmt.Errorf("clone %s: %w", name, err)
		}

		dest := filepath.Join(root, name)
		if _, err := gitrepo.Clone(cmd.Context(), client.CloneURL(name), dest); err != nil {
			return fmt.Errorf("clone %s: %w", name, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cloned repo '%s' to '%s'\n", name, dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
