// Package gitrepo wraps go-git with the small set of operations the sync
// engine needs: open, fetch, revision resolution, commit walking, and
// fast-forward application. All errors can be checked with errors.Is().
package gitrepo

import (
	"errors"
	"fmt"
)

// ErrRepoOpen is returned when a local repository is missing or unreadable.
var ErrRepoOpen = errors.New("cannot open repository")

// ErrRemoteNotFound is returned when the configured remote does not exist,
// either in the local configuration or on the remote side.
var ErrRemoteNotFound = errors.New("remote not found")

// ErrNetwork is returned when a fetch or clone fails to reach the remote.
var ErrNetwork = errors.New("network failure")

// ErrRevisionResolve is returned when HEAD or the upstream tracking revision
// cannot be resolved (e.g. no tracking branch is configured).
var ErrRevisionResolve = errors.New("cannot resolve revision")

// ErrNonFastForward is returned when advancing a branch would not be a
// fast-forward, i.e. the current position is not an ancestor of the target.
var ErrNonFastForward = errors.New("not a fast-forward")

// ErrRefUpdate is returned when moving a branch reference fails.
var ErrRefUpdate = errors.New("reference update failed")

// ErrCheckout is returned when updating the working tree fails.
var ErrCheckout = errors.New("checkout failed")

// WrapError wraps an error with additional context while preserving
// errors.Is() checks against the sentinel errors above.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf is WrapError with a format string.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
