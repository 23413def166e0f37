package changes

import "strings"

// Source provides the raw per-file inputs of an overview.
type Source interface {
	// FileDiff returns the zero-context diff of path against HEAD.
	FileDiff(path string) (string, error)
	ReadFile(path string) ([]byte, error)
}

// Aggregator builds overviews for tree rows on demand.
type Aggregator struct {
	Source  Source
	Symbols *SymbolRegistry
	Limits  Limits
}

func NewAggregator(src Source, reg *SymbolRegistry, lim Limits) *Aggregator {
	if reg == nil {
		reg = NewSymbolRegistry()
	}
	return &Aggregator{Source: src, Symbols: reg, Limits: lim.Normalize()}
}

// Row dispatches on the row kind. files is the flat entry list of the
// snapshot the row belongs to.
func (a *Aggregator) Row(row TreeRow, files []PathEntry) Overview {
	if row.Kind == RowFolder {
		return a.Folder(row, files)
	}
	return a.File(PathEntry{
		Path:      row.Path,
		Staged:    row.Staged,
		Unstaged:  row.Unstaged,
		Untracked: row.Untracked,
	})
}

// File summarizes a single file. A failing source yields an empty summary.
func (a *Aggregator) File(entry PathEntry) Overview {
	var sum DiffSummary
	if entry.Untracked {
		sum = SummarizeContent(readOrEmpty(a.read, entry.Path), entry.Path, a.Symbols, a.Limits)
	} else {
		var text string
		if a.Source != nil {
			if diff, err := a.Source.FileDiff(entry.Path); err == nil {
				text = diff
			}
		}
		sum = SummarizeDiff(text, entry.Path, a.Symbols, a.Limits)
	}
	return Overview{
		Target:        entry.Path,
		State:         entry.Status().Label(),
		DiffSummary:   sum,
		UseSymbolView: sum.hasSymbols(),
	}
}

func (a *Aggregator) read(path string) ([]byte, error) {
	if a.Source == nil {
		return nil, nil
	}
	return a.Source.ReadFile(path)
}

// Folder sums the overviews of every file at or below row.Path and unions
// their symbol sets. The preview interleaves a "file: <path>" marker with
// the first few rows of each file until the folder preview cap is reached.
func (a *Aggregator) Folder(row TreeRow, files []PathEntry) Overview {
	lim := a.Limits.Normalize()
	prefix := row.Path + "/"
	sum := DiffSummary{
		MethodsAdded:    NameSet{},
		MethodsModified: NameSet{},
		MethodsDeleted:  NameSet{},
	}
	preview := previewBuffer{maxRows: lim.FolderPreviewRows, maxChars: lim.PreviewChars}
	for _, file := range files {
		if file.Path != row.Path && !strings.HasPrefix(file.Path, prefix) {
			continue
		}
		ov := a.File(file)
		sum.Added += ov.Added
		sum.Removed += ov.Removed
		sum.MethodsAdded = sum.MethodsAdded.Union(ov.MethodsAdded)
		sum.MethodsModified = sum.MethodsModified.Union(ov.MethodsModified)
		sum.MethodsDeleted = sum.MethodsDeleted.Union(ov.MethodsDeleted)
		if preview.full() {
			continue
		}
		preview.push(PreviewMeta, "file: "+file.Path)
		for i, line := range ov.Preview {
			if i >= lim.FolderFileRows || preview.full() {
				break
			}
			preview.push(line.Kind, line.Text)
		}
	}
	sum.Preview = preview.rows
	return Overview{
		Target:        row.Path + "/",
		State:         row.PathStatus.Label(),
		DiffSummary:   sum,
		UseSymbolView: sum.hasSymbols(),
	}
}
