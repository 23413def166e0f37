package changes

import "strings"

type previewBuffer struct {
	rows     []PreviewLine
	maxRows  int
	maxChars int
}

// push drops the row once the buffer is full.
func (b *previewBuffer) push(kind PreviewKind, text string) {
	if len(b.rows) >= b.maxRows {
		return
	}
	b.rows = append(b.rows, PreviewLine{Kind: kind, Text: Truncate(text, b.maxChars)})
}

func (b *previewBuffer) full() bool {
	return len(b.rows) >= b.maxRows
}

// SummarizeDiff walks a zero-context unified diff of a single file. Each
// hunk header names the enclosing function (through its trailing context),
// and every changed line below it marks that function as touched. Changed
// lines that are themselves definitions become added or removed candidates,
// reconciled at the end:
//
//	added    = A - R
//	deleted  = R - A
//	modified = (touched ∪ (A ∩ R)) - (added ∪ deleted)
func SummarizeDiff(diff, filePath string, reg *SymbolRegistry, lim Limits) DiffSummary {
	if reg == nil {
		reg = NewSymbolRegistry()
	}
	lim = lim.Normalize()
	heuristic := reg.HeuristicFor(filePath)
	extract := func(line string) (string, bool) { return apply(heuristic, line) }

	var (
		sum       DiffSummary
		preview   = previewBuffer{maxRows: lim.PreviewRows, maxChars: lim.PreviewChars}
		candAdded = NameSet{}
		candGone  = NameSet{}
		touched   = NameSet{}
		hunk      string
		inHunk    bool
	)
	for raw := range strings.Lines(diff) {
		line := strings.TrimRight(raw, "\r\n")
		switch {
		case strings.HasPrefix(line, "@@"):
			hunk, inHunk = extract(hunkContext(line))
			preview.push(PreviewMeta, line)
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "index "):
			preview.push(PreviewMeta, line)
		case strings.HasPrefix(line, "+"):
			sum.Added++
			if inHunk {
				touched.Add(hunk)
			}
			if name, ok := extract(line[1:]); ok {
				candAdded.Add(name)
			}
			preview.push(PreviewAdded, line)
		case strings.HasPrefix(line, "-"):
			sum.Removed++
			if inHunk {
				touched.Add(hunk)
			}
			if name, ok := extract(line[1:]); ok {
				candGone.Add(name)
			}
			preview.push(PreviewRemoved, line)
		default:
			preview.push(PreviewContext, line)
		}
	}

	sum.MethodsAdded = candAdded.Difference(candGone)
	sum.MethodsDeleted = candGone.Difference(candAdded)
	sum.MethodsModified = touched.Union(candAdded.Intersect(candGone)).
		Difference(sum.MethodsAdded.Union(sum.MethodsDeleted))
	sum.Preview = preview.rows
	return sum
}

// hunkContext returns the text after the second "@@" of a hunk header,
// which git fills with the nearest preceding unchanged line.
func hunkContext(header string) string {
	parts := strings.Split(header, "@@")
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[2])
}

// SummarizeContent summarizes an untracked file: every line counts as added
// and every recognized definition as an added symbol.
func SummarizeContent(content []byte, filePath string, reg *SymbolRegistry, lim Limits) DiffSummary {
	if reg == nil {
		reg = NewSymbolRegistry()
	}
	lim = lim.Normalize()
	heuristic := reg.HeuristicFor(filePath)
	preview := previewBuffer{maxRows: lim.UntrackedPreviewRows, maxChars: lim.PreviewChars}
	sum := DiffSummary{
		MethodsAdded:    NameSet{},
		MethodsModified: NameSet{},
		MethodsDeleted:  NameSet{},
	}
	for raw := range strings.Lines(string(content)) {
		line := strings.TrimRight(raw, "\r\n")
		sum.Added++
		if name, ok := apply(heuristic, line); ok {
			sum.MethodsAdded.Add(name)
		}
		if !preview.full() {
			preview.push(PreviewAdded, "+"+Truncate(line, lim.PreviewChars-1))
		}
	}
	sum.Preview = preview.rows
	return sum
}

// CountLines counts lines the way SummarizeContent does: a trailing newline
// does not start a new line.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := strings.Count(string(content), "\n")
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
