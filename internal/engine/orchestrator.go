package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// FetchOptions configures the concurrent fetch fan-out.
type FetchOptions struct {
	// Concurrency bounds how many repository checks run at once. Zero means
	// unbounded: every repository gets its own goroutine immediately, which
	// also means one concurrent network fetch per repository.
	Concurrency int64

	// OnError receives per-repository check failures. Failures never abort
	// sibling checks and never fail the overall call. Nil means discard.
	OnError func(name string, err error)
}

// ListRepoDirs returns the names of root's immediate subdirectories.
// Symlinks are followed. Entries that cannot be inspected are skipped
// silently, the same as non-directories: only candidates that look like
// repositories reach the per-repository error path.
func ListRepoDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list repositories in %s: %w", root, err)
	}

	var dirs []string
	for _, entry := range entries {
		fi, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !fi.IsDir() {
			continue
		}
		dirs = append(dirs, entry.Name())
	}
	return dirs, nil
}

// FetchAll checks every immediate subdirectory of root for upstream changes
// and returns the divergent ones. Non-directory entries are skipped. The
// result order is unspecified; the report layer sorts before rendering.
//
// Only a root listing failure is fatal. Each repository check runs in its own
// goroutine; results funnel through a single channel that is drained only
// after every producer has finished, so the returned slice is complete.
func FetchAll(ctx context.Context, root string, opts FetchOptions) ([]UpdateInfo, error) {
	dirs, err := ListRepoDirs(root)
	if err != nil {
		return nil, err
	}

	onError := opts.OnError
	if onError == nil {
		onError = func(string, error) {}
	}

	var sem *semaphore.Weighted
	if opts.Concurrency > 0 {
		sem = semaphore.NewWeighted(opts.Concurrency)
	}

	// Buffered to the worker count so no producer ever blocks on the channel;
	// the consumer drains only after the join.
	results := make(chan UpdateInfo, len(dirs))
	var wg sync.WaitGroup

	for _, dir := range dirs {
		wg.Add(1)
		go func(dir string) {
			defer wg.Done()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					onError(dir, err)
					return
				}
				defer sem.Release(1)
			}

			info, err := CheckRepo(ctx, filepath.Join(root, dir))
			if err != nil {
				onError(dir, err)
				return
			}
			if info != nil {
				results <- *info
			}
		}(dir)
	}

	wg.Wait()
	close(results)

	var infos []UpdateInfo
	for info := range results {
		infos = append(infos, info)
	}
	return infos, nil
}
