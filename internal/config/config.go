package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "aursync"

type Config struct {
	// ReposRoot is the explicit repository storage directory, taken from the
	// leading positional argument. Empty means use the platform default.
	ReposRoot string

	Runtime Runtime
}

type Runtime struct {
	// Concurrency bounds parallel repository checks (see --concurrency).
	// 0 means unbounded: one goroutine and one network fetch per repository.
	Concurrency int

	// Verbose enables per-request logging for AUR RPC calls (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{}
}

// ResolveRoot returns the repository storage directory, creating it if it
// does not exist yet. The explicit positional root wins; otherwise the
// platform application-data directory joined with "aursync/repos" is used.
func (c *Config) ResolveRoot() (string, error) {
	root := c.ReposRoot
	if root == "" {
		root = filepath.Join(xdg.DataHome, appDirName, "repos")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create repos root %s: %w", root, err)
	}
	return root, nil
}
