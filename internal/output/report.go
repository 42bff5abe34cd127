// Package output renders divergence reports and search results for the
// console. It performs no filesystem or network access.
package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"aursync/internal/aur"
	"aursync/internal/engine"
)

var (
	headerStyle = color.New(color.Bold)
	nameStyle   = color.New(color.FgBlue, color.Bold)
	bulletStyle = color.New(color.FgMagenta)
	commitStyle = color.New(color.FgCyan)
)

// Report renders the collected update infos sorted by repository name
// ascending, or a single no-updates line when there are none. The input
// slice is not modified.
func Report(w io.Writer, infos []engine.UpdateInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "There are currently no packages with upstream changes")
		return
	}

	sorted := append([]engine.UpdateInfo(nil), infos...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	headerStyle.Fprintln(w, "The following packages have upstream changes:")
	fmt.Fprintln(w)

	for _, info := range sorted {
		WriteUpdate(w, info)
	}
}

// WriteUpdate renders one repository block: a name header followed by one
// bullet per new commit message, in the order the checker produced them.
func WriteUpdate(w io.Writer, info engine.UpdateInfo) {
	nameStyle.Fprint(w, ":: ")
	fmt.Fprintln(w, info.Name)
	fmt.Fprintln(w)
	for _, commit := range info.Commits {
		bulletStyle.Fprint(w, "* ")
		commitStyle.Fprintln(w, commit)
	}
	fmt.Fprintln(w)
}

// SearchResults renders AUR search hits: one line per package with votes and
// popularity, plus an indented description when present. Zero matches render
// a single no-packages line.
func SearchResults(w io.Writer, pkgs []aur.Package) {
	if len(pkgs) == 0 {
		fmt.Fprintln(w, "No packages found")
		return
	}

	for _, pkg := range pkgs {
		nameStyle.Fprint(w, pkg.Name)
		fmt.Fprintf(w, " %s (votes: %d, popularity: %.2f)\n", pkg.Version, pkg.NumVotes, pkg.Popularity)
		if pkg.Description != "" {
			fmt.Fprintf(w, "    %s\n", pkg.Description)
		}
	}
}
