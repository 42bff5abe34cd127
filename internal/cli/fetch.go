package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aursync/internal/engine"
	"aursync/internal/flags"
	"aursync/internal/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all package repositories and report upstream changes",
	Long: `Fetch origin/master for every repository under the repos root, in
parallel, and print the packages that have new upstream commits.

A repository whose fetch or resolution fails is reported on stderr and does
not affect the other repositories or the exit status.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	root, err := cfg.ResolveRoot()
	if err != nil {
		return err
	}

	infos, err := engine.FetchAll(cmd.Context(), root, engine.FetchOptions{
		Concurrency: int64(cfg.Runtime.Concurrency),
		OnError: func(name string, err error) {
			fmt.Fprintf(os.Stderr, "Error while checking for updates for repo %s: %v\n", name, err)
		},
	})
	if err != nil {
		return err
	}

	output.Report(cmd.OutOrStdout(), infos)
	return nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, 0, "Max concurrent repository checks (0 = unbounded)")
}
