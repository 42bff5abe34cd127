package engine

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"aursync/internal/gitrepo"
	"aursync/internal/gittest"
)

var baseTime = time.Unix(1700000000, 0)

func TestCheckRepo_NoDivergence(t *testing.T) {
	f := gittest.NewFixture(t)

	info, err := CheckRepo(context.Background(), f.LocalDir)
	if err != nil {
		t.Fatalf("CheckRepo: %v", err)
	}
	if info != nil {
		t.Fatalf("expected no divergence, got %+v", info)
	}
}

func TestCheckRepo_BehindUpstream(t *testing.T) {
	f := gittest.NewFixture(t)
	f.CommitUpstream(t, "fix bug", baseTime.Add(1*time.Hour))
	f.CommitUpstream(t, "add feature", baseTime.Add(2*time.Hour))

	info, err := CheckRepo(context.Background(), f.LocalDir)
	if err != nil {
		t.Fatalf("CheckRepo: %v", err)
	}
	if info == nil {
		t.Fatal("expected divergence, got none")
	}
	if want := filepath.Base(f.LocalDir); info.Name != want {
		t.Fatalf("Name = %q, want %q", info.Name, want)
	}

	// Reverse-topological: descendants before ancestors.
	want := []string{"add feature", "fix bug"}
	if !reflect.DeepEqual(info.Commits, want) {
		t.Fatalf("Commits = %v, want %v", info.Commits, want)
	}
	for _, msg := range info.Commits {
		if msg == "initial commit" {
			t.Fatal("local HEAD commit must not appear in the update")
		}
	}
}

func TestCheckRepo_RepositoryMissing(t *testing.T) {
	_, err := CheckRepo(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, gitrepo.ErrRepoOpen) {
		t.Fatalf("err = %v, want ErrRepoOpen", err)
	}
}

func TestCheckRepo_BrokenRemote(t *testing.T) {
	f := gittest.NewFixture(t)
	f.BreakRemote(t)

	_, err := CheckRepo(context.Background(), f.LocalDir)
	if err == nil {
		t.Fatal("expected a fetch error")
	}
}

func TestCheckRepo_NoTrackingBranch(t *testing.T) {
	f := gittest.NewFixture(t)
	f.DropTracking(t)

	_, err := CheckRepo(context.Background(), f.LocalDir)
	if !errors.Is(err, gitrepo.ErrRevisionResolve) {
		t.Fatalf("err = %v, want ErrRevisionResolve", err)
	}
}

func TestCheckRepo_RefetchesEveryCall(t *testing.T) {
	f := gittest.NewFixture(t)

	info, err := CheckRepo(context.Background(), f.LocalDir)
	if err != nil || info != nil {
		t.Fatalf("first check: info=%v err=%v", info, err)
	}

	// An upstream commit added after the first check must be visible on the
	// next one without any other intervention.
	f.CommitUpstream(t, "late arrival", baseTime.Add(time.Hour))

	info, err = CheckRepo(context.Background(), f.LocalDir)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if info == nil || len(info.Commits) != 1 || info.Commits[0] != "late arrival" {
		t.Fatalf("second check: got %+v, want the late commit", info)
	}
}
