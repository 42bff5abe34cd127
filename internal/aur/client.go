// Package aur wraps the Jguer/aur RPC client for the AUR registry and
// derives the git hosting URLs for packages. The RPC is a stateless
// read-only query surface; no authentication.
package aur

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	aurtypes "github.com/Jguer/aur"
	aurrpc "github.com/Jguer/aur/rpc"
)

// DefaultBaseURL is the production AUR host.
const DefaultBaseURL = "https://aur.archlinux.org"

// ErrPackageNotFound is returned when a package name is absent from the
// remote registry.
var ErrPackageNotFound = errors.New("package not found")

// Package is the subset of AUR package metadata the tool renders.
type Package struct {
	Name        string
	Version     string
	Description string
	NumVotes    int
	Popularity  float64
}

type options struct {
	baseURL string
	http    *http.Client
	verbose bool
	writer  io.Writer
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides the AUR host, typically for tests.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = base }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.http = c }
}

// WithVerbose logs one line per RPC request to writer (stderr when nil).
func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

// loggingDoer wraps the HTTP client and emits one line per RPC request when
// verbose logging is enabled.
type loggingDoer struct {
	base *http.Client
	w    io.Writer
}

func (d *loggingDoer) Do(req *http.Request) (*http.Response, error) {
	if d.w != nil {
		fmt.Fprintf(d.w, "[verbose] aur rpc: GET %s\n", req.URL.String())
	}
	return d.base.Do(req)
}

// Client queries the AUR RPC.
type Client struct {
	rpc     *aurrpc.Client
	baseURL string
}

func NewClient(opts ...Option) (*Client, error) {
	o := &options{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}

	var doer aurtypes.HTTPRequestDoer = o.http
	if o.verbose {
		doer = &loggingDoer{base: o.http, w: o.writer}
	}

	rpc, err := aurrpc.NewClient(
		aurrpc.WithBaseURL(o.baseURL),
		aurrpc.WithHTTPClient(doer),
	)
	if err != nil {
		return nil, fmt.Errorf("build AUR client: %w", err)
	}
	return &Client{rpc: rpc, baseURL: o.baseURL}, nil
}

// CloneURL returns the git URL for a package's AUR repository.
func (c *Client) CloneURL(name string) string {
	return c.baseURL + "/" + name + ".git"
}

// Search queries the AUR for packages matching the expression by name and
// description, and returns them sorted by name ascending.
func (c *Client) Search(ctx context.Context, expression string) ([]Package, error) {
	results, err := c.rpc.Search(ctx, expression, aurtypes.NameDesc)
	if err != nil {
		return nil, fmt.Errorf("query AUR: %w", err)
	}

	pkgs := make([]Package, 0, len(results))
	for _, r := range results {
		pkgs = append(pkgs, fromRPC(r))
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs, nil
}

// Info looks up a single package by exact name. Returns ErrPackageNotFound
// when the registry has no such package.
func (c *Client) Info(ctx context.Context, name string) (*Package, error) {
	results, err := c.rpc.Info(ctx, []string{name})
	if err != nil {
		return nil, fmt.Errorf("query AUR: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	pkg := fromRPC(results[0])
	return &pkg, nil
}

func fromRPC(p aurtypes.Pkg) Package {
	return Package{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		NumVotes:    p.NumVotes,
		Popularity:  p.Popularity,
	}
}
