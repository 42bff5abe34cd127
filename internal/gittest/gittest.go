// Package gittest builds throwaway repository pairs for tests. The upstream
// side is served through go-git's in-process server transport, so fetches and
// clones work without a network or an installed git binary.
package gittest

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
)

var installOnce sync.Once

// InstallLocalTransport replaces the "file" protocol client with an
// in-process upload-pack server rooted at the OS filesystem. Safe to call
// from multiple tests; installs once per process.
func InstallLocalTransport() {
	installOnce.Do(func() {
		client.InstallProtocol("file", server.NewClient(server.NewFilesystemLoader(osfs.New("/"))))
	})
}

// Fixture is an upstream repository plus a local clone tracking it.
type Fixture struct {
	UpstreamDir string
	LocalDir    string
	Upstream    *git.Repository
	Local       *git.Repository

	seq int
}

// NewFixture creates an upstream repository with one initial commit and a
// local clone whose master branch tracks origin/master.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureAt(t, filepath.Join(t.TempDir(), "local"))
}

// NewFixtureAt is NewFixture with the local clone placed at localDir, for
// tests that arrange several clones under one repos root.
func NewFixtureAt(t *testing.T, localDir string) *Fixture {
	t.Helper()
	InstallLocalTransport()

	f := &Fixture{
		UpstreamDir: t.TempDir(),
		LocalDir:    localDir,
	}

	upstream, err := git.PlainInit(f.UpstreamDir, false)
	if err != nil {
		t.Fatalf("init upstream: %v", err)
	}
	f.Upstream = upstream
	f.CommitUpstream(t, "initial commit", time.Unix(1700000000, 0))

	local, err := git.PlainClone(f.LocalDir, false, &git.CloneOptions{
		URL: f.UpstreamURL(),
	})
	if err != nil {
		t.Fatalf("clone local: %v", err)
	}
	f.Local = local
	f.ensureTracking(t)

	return f
}

// UpstreamURL returns the URL the local clone fetches from. It points at the
// upstream's .git directory, which is what the filesystem loader expects.
func (f *Fixture) UpstreamURL() string {
	return filepath.Join(f.UpstreamDir, ".git")
}

// CommitUpstream writes a new file and commits it in the upstream worktree.
func (f *Fixture) CommitUpstream(t *testing.T, msg string, when time.Time) plumbing.Hash {
	t.Helper()
	return f.commit(t, f.Upstream, msg, when)
}

// CommitLocal writes a new file and commits it in the local worktree,
// diverging the clone from its upstream. The commit is also mirrored into
// the upstream object store under a throwaway ref: the in-process server
// transport aborts a fetch with "object not found" when the client
// advertises a have the upstream lacks, and the diverged fixtures need
// that fetch to succeed so the fail-closed ancestry check is reached.
func (f *Fixture) CommitLocal(t *testing.T, msg string, when time.Time) plumbing.Hash {
	t.Helper()
	hash := f.commit(t, f.Local, msg, when)

	mirror := config.RefSpec(fmt.Sprintf("+refs/heads/master:refs/gittest/local-%03d", f.seq))
	err := f.Local.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{mirror},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		t.Fatalf("mirror local commit to upstream: %v", err)
	}
	return hash
}

func (f *Fixture) commit(t *testing.T, repo *git.Repository, msg string, when time.Time) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}

	f.seq++
	name := fmt.Sprintf("file-%03d.txt", f.seq)
	file, err := wt.Filesystem.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := file.Write([]byte(msg + "\n")); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", name, err)
	}

	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "gittest", Email: "gittest@localhost", When: when},
	})
	if err != nil {
		t.Fatalf("commit %q: %v", msg, err)
	}
	return hash
}

// BreakRemote points the local clone's origin at a path that does not exist,
// so the next fetch fails like an unreachable remote.
func (f *Fixture) BreakRemote(t *testing.T) {
	t.Helper()
	f.setRemoteURL(t, filepath.Join(f.UpstreamDir, "does-not-exist"))
}

func (f *Fixture) setRemoteURL(t *testing.T, url string) {
	t.Helper()

	cfg, err := f.Local.Config()
	if err != nil {
		t.Fatalf("read local config: %v", err)
	}
	cfg.Remotes["origin"] = &config.RemoteConfig{
		Name:  "origin",
		URLs:  []string{url},
		Fetch: []config.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
	}
	if err := f.Local.SetConfig(cfg); err != nil {
		t.Fatalf("write local config: %v", err)
	}
}

// DropTracking removes the master branch's upstream configuration from the
// local clone.
func (f *Fixture) DropTracking(t *testing.T) {
	t.Helper()

	cfg, err := f.Local.Config()
	if err != nil {
		t.Fatalf("read local config: %v", err)
	}
	delete(cfg.Branches, "master")
	if err := f.Local.SetConfig(cfg); err != nil {
		t.Fatalf("write local config: %v", err)
	}
}

// ensureTracking makes branch.master.remote/merge explicit; clones from some
// transports come back without the branch section.
func (f *Fixture) ensureTracking(t *testing.T) {
	t.Helper()

	cfg, err := f.Local.Config()
	if err != nil {
		t.Fatalf("read local config: %v", err)
	}
	if cfg.Branches == nil {
		cfg.Branches = map[string]*config.Branch{}
	}
	cfg.Branches["master"] = &config.Branch{
		Name:   "master",
		Remote: "origin",
		Merge:  plumbing.NewBranchReferenceName("master"),
	}
	if err := f.Local.SetConfig(cfg); err != nil {
		t.Fatalf("write local config: %v", err)
	}
}
