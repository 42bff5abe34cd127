// Package engine implements the update-detection and fast-forward core:
// per-repository divergence checks, the concurrent fetch fan-out, and
// fast-forward application.
package engine

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"aursync/internal/gitrepo"
)

// UpdateInfo describes one repository that has diverged from its upstream:
// the repository's directory name and the messages of the commits that are
// reachable from the upstream tracking revision but not from local HEAD.
type UpdateInfo struct {
	Name    string
	Commits []string
}

// CheckRepo fetches the repository's origin/master and reports its upstream
// divergence. A nil result means local HEAD already matches upstream. Every
// call re-fetches; nothing is cached.
func CheckRepo(ctx context.Context, path string) (*UpdateInfo, error) {
	div, err := checkDivergence(ctx, path)
	if err != nil {
		return nil, err
	}
	return div.info, nil
}

// divergence is the checker's full result, kept internal so the pull path can
// reuse the resolved revisions without re-fetching.
type divergence struct {
	repo     *gitrepo.Repository
	local    plumbing.Hash
	upstream plumbing.Hash
	info     *UpdateInfo
}

func checkDivergence(ctx context.Context, path string) (*divergence, error) {
	repo, err := gitrepo.Open(path)
	if err != nil {
		return nil, err
	}

	if err := repo.FetchBranch(ctx, gitrepo.DefaultRemoteName, gitrepo.DefaultBranchName); err != nil {
		return nil, err
	}

	local, err := repo.Head()
	if err != nil {
		return nil, err
	}
	upstream, err := repo.UpstreamHash(gitrepo.DefaultBranchName)
	if err != nil {
		return nil, err
	}

	div := &divergence{repo: repo, local: local, upstream: upstream}
	if local == upstream {
		return div, nil
	}

	commits, err := repo.NewCommits(upstream, local)
	if err != nil {
		return nil, err
	}

	div.info = &UpdateInfo{
		Name:    filepath.Base(filepath.Clean(path)),
		Commits: commitMessages(orderCommits(commits)),
	}
	return div, nil
}

// orderCommits arranges the difference set reverse-topologically (descendants
// before ancestors). Among commits whose descendants have all been emitted,
// the later committer timestamp wins; equal timestamps fall back to ascending
// hash, so the order is deterministic regardless of walk order.
func orderCommits(commits []*object.Commit) []*object.Commit {
	if len(commits) <= 1 {
		return commits
	}

	inSet := make(map[plumbing.Hash]*object.Commit, len(commits))
	for _, c := range commits {
		inSet[c.Hash] = c
	}

	// pending counts, per commit, how many in-set children are not yet emitted.
	pending := make(map[plumbing.Hash]int, len(commits))
	for _, c := range commits {
		for _, parent := range c.ParentHashes {
			if _, ok := inSet[parent]; ok {
				pending[parent]++
			}
		}
	}

	var ready []*object.Commit
	for _, c := range commits {
		if pending[c.Hash] == 0 {
			ready = append(ready, c)
		}
	}

	ordered := make([]*object.Commit, 0, len(commits))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if commitLess(ready[best], ready[i]) {
				best = i
			}
		}
		next := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		ordered = append(ordered, next)

		for _, parent := range next.ParentHashes {
			if _, ok := inSet[parent]; !ok {
				continue
			}
			pending[parent]--
			if pending[parent] == 0 {
				ready = append(ready, inSet[parent])
			}
		}
	}

	// Commit graphs are acyclic, so the walk emits everything; if parent data
	// is inconsistent, fall back to timestamp order instead of dropping commits.
	if len(ordered) != len(commits) {
		sorted := append([]*object.Commit(nil), commits...)
		sort.Slice(sorted, func(i, j int) bool { return !commitLess(sorted[i], sorted[j]) })
		return sorted
	}
	return ordered
}

// commitLess reports whether a ranks below b for emission: earlier committer
// time loses, equal times break ties toward the lexically larger hash.
func commitLess(a, b *object.Commit) bool {
	at, bt := a.Committer.When, b.Committer.When
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.Hash.String() > b.Hash.String()
}

func commitMessages(commits []*object.Commit) []string {
	msgs := make([]string, 0, len(commits))
	for _, c := range commits {
		msgs = append(msgs, strings.TrimRight(c.Message, "\n"))
	}
	return msgs
}
