package flags

// Package flags defines canonical CLI flag names shared across the CLI.
// These are flag *names* without leading dashes.
const (
	FlagConcurrency = "concurrency"
	FlagVerbose     = "verbose"
)
