package changes

// ReadFunc reads the current worktree content of a repository-relative path.
type ReadFunc func(path string) ([]byte, error)

// Snapshot is everything one refresh produces. It is replaced wholesale on
// the next refresh; row indexes are only meaningful within one snapshot.
type Snapshot struct {
	Branch string
	Ahead  int
	Behind int
	Files  []PathEntry
	Deltas map[string]PathDelta
	Rows   []TreeRow
}

// EmptySnapshot is the valid, empty result used when no status report is
// available.
func EmptySnapshot() Snapshot {
	return Snapshot{Deltas: map[string]PathDelta{}}
}

// BuildSnapshot runs the whole pipeline over one status and numstat report.
// Untracked files have no numstat line, so their added count is the line
// count of their content; a failed read counts as empty content.
func BuildSnapshot(statusReport, numstatReport string, read ReadFunc) Snapshot {
	status := ParseStatus(statusReport)
	deltas := ParseNumstat(numstatReport, status.Entries)
	for _, entry := range status.Entries {
		if !entry.Untracked {
			continue
		}
		lines := CountLines(readOrEmpty(read, entry.Path))
		d := deltas[entry.Path]
		d.Added = max(d.Added, lines)
		deltas[entry.Path] = d
	}
	return Snapshot{
		Branch: status.Branch,
		Ahead:  status.Ahead,
		Behind: status.Behind,
		Files:  status.Entries,
		Deltas: deltas,
		Rows:   BuildTree(status.Entries, deltas),
	}
}

func readOrEmpty(read ReadFunc, path string) []byte {
	if read == nil {
		return nil
	}
	data, err := read(path)
	if err != nil {
		return nil
	}
	return data
}

func (s Snapshot) Row(i int) (TreeRow, bool) {
	if i < 0 || i >= len(s.Rows) {
		return TreeRow{}, false
	}
	return s.Rows[i], true
}

func (s Snapshot) StagedCount() int {
	n := 0
	for _, f := range s.Files {
		if f.Staged {
			n++
		}
	}
	return n
}

// UnstagedCount counts files with worktree changes, untracked ones included.
func (s Snapshot) UnstagedCount() int {
	n := 0
	for _, f := range s.Files {
		if f.Unstaged || f.Untracked {
			n++
		}
	}
	return n
}
