package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterRows(t *testing.T) {
	t.Parallel()
	rows := testSnapshot().Rows

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "  ", want: []string{"cmd", "cmd/root.go", "cmd/run.go", "docs", "docs/intro.md"}},
		{name: "fuzzy_file", query: "rtg", want: []string{"cmd", "cmd/root.go"}},
		{name: "folder_name", query: "cmd/", want: []string{"cmd", "cmd/root.go", "cmd/run.go"}},
		{name: "case_insensitive", query: "INTRO", want: []string{"docs", "docs/intro.md"}},
		{name: "no_match", query: "zzz", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, idx := range filterRows(rows, tt.query) {
				got = append(got, rows[idx].Path)
			}
			require.Equal(t, tt.want, got)
		})
	}
}
