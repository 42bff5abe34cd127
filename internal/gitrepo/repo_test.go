package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"aursync/internal/gittest"
)

var baseTime = time.Unix(1700000000, 0)

func TestOpen_MissingRepository(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrRepoOpen)
}

func TestClone_AndOpen(t *testing.T) {
	f := gittest.NewFixture(t)

	dest := filepath.Join(t.TempDir(), "clone")
	repo, err := Clone(context.Background(), f.UpstreamURL(), dest)
	require.NoError(t, err)
	require.Equal(t, dest, repo.Path())

	reopened, err := Open(dest)
	require.NoError(t, err)

	head, err := reopened.Head()
	require.NoError(t, err)
	require.False(t, head.IsZero())
}

func TestClone_MissingRemote(t *testing.T) {
	gittest.InstallLocalTransport()

	_, err := Clone(context.Background(), filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "clone"))
	require.ErrorIs(t, err, ErrRemoteNotFound)
}

func TestFetchBranch_UpToDate(t *testing.T) {
	f := gittest.NewFixture(t)

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)

	require.NoError(t, repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName))
}

func TestFetchBranch_AdvancesTrackingRef(t *testing.T) {
	f := gittest.NewFixture(t)
	want := f.CommitUpstream(t, "later commit", baseTime.Add(time.Hour))

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)
	require.NoError(t, repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName))

	upstream, err := repo.UpstreamHash(DefaultBranchName)
	require.NoError(t, err)
	require.Equal(t, want, upstream)
}

func TestFetchBranch_BrokenRemote(t *testing.T) {
	f := gittest.NewFixture(t)
	f.BreakRemote(t)

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)

	err = repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName)
	require.Error(t, err)
	remoteErr := errors.Is(err, ErrRemoteNotFound) || errors.Is(err, ErrNetwork)
	require.True(t, remoteErr, "want a remote/network error, got %v", err)
}

func TestUpstreamHash_NoTrackingConfig(t *testing.T) {
	f := gittest.NewFixture(t)
	f.DropTracking(t)

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)

	_, err = repo.UpstreamHash(DefaultBranchName)
	require.ErrorIs(t, err, ErrRevisionResolve)
}

func TestNewCommits_SetDifference(t *testing.T) {
	f := gittest.NewFixture(t)
	f.CommitUpstream(t, "fix bug", baseTime.Add(1*time.Hour))
	f.CommitUpstream(t, "add feature", baseTime.Add(2*time.Hour))

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)
	require.NoError(t, repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName))

	head, err := repo.Head()
	require.NoError(t, err)
	upstream, err := repo.UpstreamHash(DefaultBranchName)
	require.NoError(t, err)
	require.NotEqual(t, head, upstream)

	commits, err := repo.NewCommits(upstream, head)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	for _, c := range commits {
		require.NotEqual(t, head, c.Hash, "local HEAD must never be part of the difference set")
	}
}

func TestIsAncestor(t *testing.T) {
	f := gittest.NewFixture(t)
	f.CommitUpstream(t, "second", baseTime.Add(time.Hour))

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)
	require.NoError(t, repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName))

	head, err := repo.Head()
	require.NoError(t, err)
	upstream, err := repo.UpstreamHash(DefaultBranchName)
	require.NoError(t, err)

	ok, err := repo.IsAncestor(head, upstream)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.IsAncestor(upstream, head)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetBranchTargetAndForceCheckout(t *testing.T) {
	f := gittest.NewFixture(t)
	f.CommitUpstream(t, "second", baseTime.Add(time.Hour))

	repo, err := Open(f.LocalDir)
	require.NoError(t, err)
	require.NoError(t, repo.FetchBranch(context.Background(), DefaultRemoteName, DefaultBranchName))

	upstream, err := repo.UpstreamHash(DefaultBranchName)
	require.NoError(t, err)

	require.NoError(t, repo.SetBranchTarget(DefaultBranchName, upstream))
	require.NoError(t, repo.ForceCheckout(DefaultBranchName))

	head, err := repo.Head()
	require.NoError(t, err)
	require.Equal(t, upstream, head)

	// The second commit's file must now exist in the working tree.
	_, err = os.Stat(filepath.Join(f.LocalDir, "file-002.txt"))
	require.NoError(t, err)
}

func TestForceCheckout_NoWorktree(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)

	err = repo.ForceCheckout(DefaultBranchName)
	require.ErrorIs(t, err, ErrCheckout)
	require.ErrorContains(t, err, "bare")
}
