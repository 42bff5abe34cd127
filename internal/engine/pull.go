package engine

import (
	"context"
	"path/filepath"

	"aursync/internal/gitrepo"
)

// Pull checks root/name against its upstream and, if it is behind,
// fast-forwards the local master branch and working tree to the upstream
// revision. It returns the applied UpdateInfo, or nil when the repository
// was already up to date (in which case nothing is mutated).
//
// If onUpdate is non-nil it is invoked with the pending update before any
// ref is moved, so callers can report what is about to be applied.
//
// The branch is only moved when local HEAD is an ancestor of the upstream
// revision. A repository that merely differs — e.g. one holding unpushed
// local commits — fails with ErrNonFastForward instead of having its
// history silently relocated.
func Pull(ctx context.Context, root, name string, onUpdate func(UpdateInfo)) (*UpdateInfo, error) {
	div, err := checkDivergence(ctx, filepath.Join(root, name))
	if err != nil {
		return nil, err
	}
	if div.info == nil {
		return nil, nil
	}

	ok, err := div.repo.IsAncestor(div.local, div.upstream)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gitrepo.WrapErrorf(gitrepo.ErrNonFastForward, "%s: local %s is not an ancestor of upstream %s", name, div.local, div.upstream)
	}

	if onUpdate != nil {
		onUpdate(*div.info)
	}

	if err := div.repo.SetBranchTarget(gitrepo.DefaultBranchName, div.upstream); err != nil {
		return nil, err
	}
	if err := div.repo.ForceCheckout(gitrepo.DefaultBranchName); err != nil {
		return nil, err
	}
	return div.info, nil
}
