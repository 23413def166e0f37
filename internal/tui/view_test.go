package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

func TestViewEmptyRepository(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakeService{snap: changes.EmptySnapshot()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 30})

	view := m.View()
	for _, want := range []string{
		"changed files",
		"unstaged (0)",
		"staged (0)",
		"clean",
		"selected file overview",
		"No changed file selected",
		"Branch: unknown",
		"Ahead: 0  Behind: 0",
		"Staged files: 0",
		"Unstaged files: 0",
		"Status: Ready",
	} {
		require.Contains(t, view, want)
	}
}

func TestViewFilesPane(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakeService{snap: testSnapshot()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 30})

	lines := m.filesLines(28, 0)
	require.Equal(t, []string{
		"unstaged (4)",
		"▶ cmd/            +   5 -   1",
		"    run.go        +   2 -   0",
		"  docs/           +   3 -   0",
		"    intro.md      +   3 -   0",
		"",
		"staged (2)",
		"▶ cmd/            +   5 -   1",
		"    root.go       +   3 -   1",
	}, lines)

	view := m.View()
	require.Contains(t, view, "Branch: main")
	require.Contains(t, view, "Ahead: 2  Behind: 0")
	require.Contains(t, view, "Staged files: 1")
	require.Contains(t, view, "Unstaged files: 2")
}

func TestViewFilesPaneFollowsSelection(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakeService{snap: testSnapshot()})
	m, _ = update(t, m, keyRunes("k"))

	lines := m.filesLines(28, 3)
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[2], "▶ "), lines[2])
}

func TestOverviewLinesSymbolView(t *testing.T) {
	t.Parallel()
	svc := &fakeService{
		snap: testSnapshot(),
		overview: func(row changes.TreeRow) changes.Overview {
			return changes.Overview{
				Target: row.Path + "/",
				State:  row.PathStatus.Label(),
				DiffSummary: changes.DiffSummary{
					Added:           5,
					Removed:         1,
					MethodsAdded:    changes.NewNameSet("Stop"),
					MethodsModified: changes.NewNameSet("Run", "Execute"),
				},
				UseSymbolView: true,
			}
		},
	}
	m := loaded(t, svc)

	require.Equal(t, []string{
		"file: cmd/",
		"state: staged, unstaged",
		"",
		"files changes",
		"+5  -1",
		"",
		"methods added",
		"- Stop",
		"",
		"methods modified",
		"- Execute",
		"- Run",
		"",
		"methods deleted",
		"- none",
		"",
	}, m.overviewLines())
}

func TestOverviewLinesPreview(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		preview []changes.PreviewLine
		want    []string
	}{
		{
			name: "no_preview",
			want: []string{"No diff preview available"},
		},
		{
			name: "preview",
			preview: []changes.PreviewLine{
				{Kind: changes.PreviewMeta, Text: "@@ -1 +1 @@"},
				{Kind: changes.PreviewRemoved, Text: "-old"},
				{Kind: changes.PreviewAdded, Text: "+new"},
			},
			want: []string{"diff preview:", "@@ -1 +1 @@", "-old", "+new"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &fakeService{
				snap: testSnapshot(),
				overview: func(row changes.TreeRow) changes.Overview {
					return changes.Overview{Target: row.Path, DiffSummary: changes.DiffSummary{Preview: tt.preview}}
				},
			}
			m := loaded(t, svc)
			lines := m.overviewLines()
			require.Equal(t, tt.want, lines[6:])
		})
	}
}

func TestViewCommitModal(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakeService{snap: testSnapshot()})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 30})
	m, _ = update(t, m, keyRunes("c"))

	view := m.View()
	require.Contains(t, view, "Create Commit")
	require.Contains(t, view, "Write commit message and press Enter")
	require.Contains(t, view, "Esc cancels")
}

func TestClip(t *testing.T) {
	t.Parallel()
	require.Equal(t, "abc", clip("abc", 5))
	require.Equal(t, "abcd…", clip("abcdefgh", 5))
	require.Empty(t, clip("abc", 0))
}
