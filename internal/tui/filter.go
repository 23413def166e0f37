package tui

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

// filterRows returns the indexes of the rows to show for query. A file is
// kept when its path fuzzy-matches; a folder is kept when any file below it
// is. An empty query keeps every row.
func filterRows(rows []changes.TreeRow, query string) []int {
	query = strings.TrimSpace(query)
	visible := make([]int, 0, len(rows))
	if query == "" {
		for i := range rows {
			visible = append(visible, i)
		}
		return visible
	}
	var matched []string
	for _, row := range rows {
		if row.Kind == changes.RowFile && fuzzy.MatchFold(query, row.Path) {
			matched = append(matched, row.Path)
		}
	}
	for i, row := range rows {
		if row.Kind == changes.RowFile {
			if fuzzy.MatchFold(query, row.Path) {
				visible = append(visible, i)
			}
			continue
		}
		prefix := row.Path + "/"
		for _, path := range matched {
			if strings.HasPrefix(path, prefix) {
				visible = append(visible, i)
				break
			}
		}
	}
	return visible
}
