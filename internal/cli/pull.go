package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"aursync/internal/engine"
	"aursync/internal/flags"
	"aursync/internal/output"
)

var pullCmd = &cobra.Command{
	Use:   "pull [package...]",
	Short: "Fast-forward package repositories to their upstream",
	Long: `Fast-forward the named package repositories to origin/master. With no
names, every repository under the repos root is pulled.

Pulls run concurrently and independently: one package's failure is reported
on stderr and does not affect the others or the exit status. A repository
whose local history has diverged from upstream is left untouched and
reported as not fast-forwardable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := cfg.ResolveRoot()
		if err != nil {
			return err
		}

		names := args
		if len(names) == 0 {
			names, err = engine.ListRepoDirs(root)
			if err != nil {
				return err
			}
		}

		var sem *semaphore.Weighted
		if cfg.Runtime.Concurrency > 0 {
			sem = semaphore.NewWeighted(int64(cfg.Runtime.Concurrency))
		}

		out := cmd.OutOrStdout()
		var wg sync.WaitGroup
		var mu sync.Mutex // serializes console writes across pull goroutines

		for _, name := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()

				if sem != nil {
					if err := sem.Acquire(cmd.Context(), 1); err != nil {
						mu.Lock()
						defer mu.Unlock()
						fmt.Fprintf(os.Stderr, "Error while pulling package %s: %v\n", name, err)
						return
					}
					defer sem.Release(1)
				}

				info, err := engine.Pull(cmd.Context(), root, name, func(pending engine.UpdateInfo) {
					mu.Lock()
					defer mu.Unlock()
					output.WriteUpdate(out, pending)
				})

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					fmt.Fprintf(os.Stderr, "Error while pulling package %s: %v\n", name, err)
				case info == nil:
					fmt.Fprintf(out, "%s: no new commits\n", name)
				default:
					fmt.Fprintf(out, "%s: fast-forwarded (%d new commits)\n", name, len(info.Commits))
				}
			}(name)
		}
		wg.Wait()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, 0, "Max concurrent pulls (0 = unbounded)")
}
