// Package changes turns raw git reports into a path tree with rolled-up
// status and line deltas, and summarizes per-file diffs into the functions
// they touched.
//
// Everything here is a pure transformation over text handed in by the
// caller. The only I/O is reading untracked file content, which goes through
// a caller-supplied reader.
package changes

import "strings"

// DefaultBranch is reported when the status report carries no branch line.
const DefaultBranch = "unknown"

type PathEntry struct {
	Path      string
	Staged    bool
	Unstaged  bool
	Untracked bool
}

func (e PathEntry) Status() PathStatus {
	return PathStatus{Staged: e.Staged, Unstaged: e.Unstaged, Untracked: e.Untracked}
}

// PathStatus holds the three change flags of a file or, for folders, the
// union of the flags of every file below it.
type PathStatus struct {
	Staged    bool
	Unstaged  bool
	Untracked bool
}

// Merge returns the flag-wise OR of s and other.
func (s PathStatus) Merge(other PathStatus) PathStatus {
	return PathStatus{
		Staged:    s.Staged || other.Staged,
		Unstaged:  s.Unstaged || other.Unstaged,
		Untracked: s.Untracked || other.Untracked,
	}
}

// Label renders the status for display, e.g. "staged, unstaged" or "clean".
func (s PathStatus) Label() string {
	var states []string
	if s.Staged {
		states = append(states, "staged")
	}
	if s.Unstaged {
		states = append(states, "unstaged")
	}
	if s.Untracked {
		states = append(states, "new")
	}
	if len(states) == 0 {
		return "clean"
	}
	return strings.Join(states, ", ")
}

type PathDelta struct {
	Added   int
	Removed int
}

func (d PathDelta) Add(other PathDelta) PathDelta {
	return PathDelta{Added: d.Added + other.Added, Removed: d.Removed + other.Removed}
}

type RowKind uint8

const (
	RowFolder RowKind = iota
	RowFile
)

func (k RowKind) String() string {
	if k == RowFolder {
		return "folder"
	}
	return "file"
}

// TreeRow is one line of the flattened change tree. Folder rows carry the
// aggregated status and delta of their descendants.
type TreeRow struct {
	Path  string
	Label string
	Kind  RowKind
	PathStatus
	PathDelta
}

type PreviewKind uint8

const (
	PreviewContext PreviewKind = iota
	PreviewAdded
	PreviewRemoved
	PreviewMeta
)

type PreviewLine struct {
	Kind PreviewKind
	Text string
}

// DiffSummary is the result of walking one file's diff (or, for untracked
// files, its content).
type DiffSummary struct {
	Added           int
	Removed         int
	MethodsAdded    NameSet
	MethodsModified NameSet
	MethodsDeleted  NameSet
	Preview         []PreviewLine
}

func (s DiffSummary) hasSymbols() bool {
	return s.MethodsAdded.Len() > 0 || s.MethodsModified.Len() > 0 || s.MethodsDeleted.Len() > 0
}

// Overview is the display-ready summary of the selected tree row.
type Overview struct {
	Target string
	State  string
	DiffSummary
	// UseSymbolView is false when no symbol was recognized, in which case
	// the raw preview should be shown instead.
	UseSymbolView bool
}
