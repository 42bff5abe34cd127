package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aursync/internal/config"
	"aursync/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "aursync [repos-root]",
	Short: "Keep local AUR package repositories in sync with upstream",
	Long: `aursync maintains a directory of local AUR package clones, reports which
have new upstream commits, and fast-forwards them on request.

The optional leading repos-root argument overrides the default storage
directory (the platform data directory joined with aursync/repos).

Running aursync without a subcommand is the same as "aursync fetch".

Examples:
	# Clone a package repository
	aursync clone yay

	# Check all clones for upstream changes
	aursync fetch

	# Fast-forward one package, or all of them
	aursync pull yay
	aursync pull

	# Search the AUR
	aursync search helper`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default command: behave exactly like "aursync fetch".
		return runFetch(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Log every AUR RPC request to stderr")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// splitRootArg peels a leading repos-root positional off the argument list.
// The first argument is treated as a storage path when it is neither a flag
// nor a known subcommand, preserving the "aursync [repos-root] <command>"
// surface.
func splitRootArg(args []string, commands []string) (root string, rest []string) {
	if len(args) == 0 {
		return "", args
	}
	first := args[0]
	if strings.HasPrefix(first, "-") {
		return "", args
	}
	for _, name := range commands {
		if first == name {
			return "", args
		}
	}
	return first, args[1:]
}

func commandNames() []string {
	names := []string{"help", "completion"}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
		names = append(names, c.Aliases...)
	}
	return names
}

func Execute() {
	root, rest := splitRootArg(os.Args[1:], commandNames())
	cfg.ReposRoot = root
	rootCmd.SetArgs(rest)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
