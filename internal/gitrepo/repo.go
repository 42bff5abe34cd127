package gitrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const (
	// DefaultRemoteName is the remote every managed repository tracks.
	DefaultRemoteName = "origin"

	// DefaultBranchName is the fixed branch the engine operates on.
	DefaultBranchName = "master"
)

// Repository is a handle to one local clone. It is not safe for concurrent
// use; the engine opens one handle per repository per operation.
type Repository struct {
	repo *git.Repository
	path string
}

// Open opens an existing non-bare repository at path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapErrorf(ErrRepoOpen, "no repository at %s", path)
		}
		return nil, WrapErrorf(ErrRepoOpen, "open %s: %v", path, err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Clone clones remoteURL into path and returns a handle to the new clone.
func Clone(ctx context.Context, remoteURL, path string) (*Repository, error) {
	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL: remoteURL,
	})
	if err != nil {
		if errors.Is(err, transport.ErrRepositoryNotFound) {
			return nil, WrapErrorf(ErrRemoteNotFound, "clone %s", remoteURL)
		}
		return nil, WrapErrorf(ErrNetwork, "clone %s: %v", remoteURL, err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Path returns the filesystem path the repository was opened at.
func (r *Repository) Path() string {
	return r.path
}

// FetchBranch fetches the given branch from the given remote into its
// remote-tracking ref. A single attempt, no retry. An already-up-to-date
// remote is not an error.
func (r *Repository) FetchBranch(ctx context.Context, remote, branch string) error {
	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch))
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refspec},
	})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, git.ErrRemoteNotFound):
		return WrapErrorf(ErrRemoteNotFound, "fetch %s", remote)
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return WrapErrorf(ErrRemoteNotFound, "fetch %s", remote)
	default:
		return WrapErrorf(ErrNetwork, "fetch %s: %v", remote, err)
	}
}

// Head resolves the local HEAD revision.
func (r *Repository) Head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, WrapErrorf(ErrRevisionResolve, "HEAD: %v", err)
	}
	return ref.Hash(), nil
}

// UpstreamHash resolves the upstream tracking revision of the given branch,
// i.e. the commit refs/remotes/<remote>/<merge> points at per the branch
// configuration. go-git's revision parser has no @{upstream} support, so the
// tracking ref is derived from the branch config directly.
func (r *Repository) UpstreamHash(branch string) (plumbing.Hash, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return plumbing.ZeroHash, WrapError(err, "read repository config")
	}

	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return plumbing.ZeroHash, WrapErrorf(ErrRevisionResolve, "branch %s has no upstream tracking configuration", branch)
	}

	trackingRef := plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short())
	ref, err := r.repo.Reference(trackingRef, true)
	if err != nil {
		return plumbing.ZeroHash, WrapErrorf(ErrRevisionResolve, "tracking ref %s", trackingRef)
	}
	return ref.Hash(), nil
}

// NewCommits returns the commits reachable from `from` but not from
// `exclude`. The result carries no particular order; callers that need
// determinism must order it themselves.
func (r *Repository) NewCommits(from, exclude plumbing.Hash) ([]*object.Commit, error) {
	excludeCommit, err := r.repo.CommitObject(exclude)
	if err != nil {
		return nil, WrapErrorf(err, "load commit %s", exclude)
	}

	// The seen set is ancestor-closed, so handing it to the second walk as
	// pre-seen hashes yields exactly the reachability set difference.
	seen := make(map[plumbing.Hash]bool)
	iter := object.NewCommitPreorderIter(excludeCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "walk excluded commits")
	}

	fromCommit, err := r.repo.CommitObject(from)
	if err != nil {
		return nil, WrapErrorf(err, "load commit %s", from)
	}

	var commits []*object.Commit
	iter = object.NewCommitPreorderIter(fromCommit, seen, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "walk new commits")
	}
	return commits, nil
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (r *Repository) IsAncestor(ancestor, descendant plumbing.Hash) (bool, error) {
	ancestorCommit, err := r.repo.CommitObject(ancestor)
	if err != nil {
		return false, WrapErrorf(err, "load commit %s", ancestor)
	}
	descendantCommit, err := r.repo.CommitObject(descendant)
	if err != nil {
		return false, WrapErrorf(err, "load commit %s", descendant)
	}
	ok, err := ancestorCommit.IsAncestor(descendantCommit)
	if err != nil {
		return false, WrapError(err, "ancestry check")
	}
	return ok, nil
}

// SetBranchTarget moves refs/heads/<branch> to point at target.
func (r *Repository) SetBranchTarget(branch string, target plumbing.Hash) error {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), target)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return WrapErrorf(ErrRefUpdate, "set %s to %s: %v", ref.Name(), target, err)
	}
	return nil
}

// ForceCheckout points HEAD at the given branch and overwrites the working
// tree to match it, discarding local modifications.
func (r *Repository) ForceCheckout(branch string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return WrapErrorf(ErrCheckout, "get worktree: %v", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Force:  true,
	})
	if err != nil {
		return WrapErrorf(ErrCheckout, "checkout %s: %v", branch, err)
	}
	return nil
}
