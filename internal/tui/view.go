package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

const (
	// footerHeight is the controls box: one help line plus its border.
	footerHeight  = 3
	defaultWidth  = 120
	// deltaWidth is the width of the " +%4d -%4d" column.
	deltaWidth    = 11
	minLabelWidth = 8
	selectedMark  = "▶ "
	markWidth     = 2
	ellipsisMark  = "…"
)

type layout struct {
	files    int
	overview int
	pulse    int
	height   int
}

// layout splits the window 20/60/20 between the panes. Widths are outer
// widths, borders included.
func (m Model) layout() layout {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	height := m.height
	if height <= 0 {
		height = defaultOverviewRows + footerHeight + 3
	}
	files := width * 20 / 100
	pulse := width * 20 / 100
	return layout{
		files:    files,
		pulse:    pulse,
		overview: max(width-files-pulse, 4),
		height:   max(height-footerHeight, 4),
	}
}

func (m Model) View() string {
	l := m.layout()
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane("changed files", m.filesLines(l.files-2, l.height-3), l.files, l.height, m.focus == paneFiles),
		m.renderOverviewPane(l),
		m.renderPane("pulse", m.pulseLines(l.pulse-2), l.pulse, l.height, false),
	)
	footer := m.styles.border.
		Width(max(l.files+l.overview+l.pulse-2, 1)).
		Render(m.styles.muted.Render("controls  ") + m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, panes, footer)
}

func (m Model) renderPane(title string, lines []string, width, height int, active bool) string {
	st := m.styles.border
	if active {
		st = m.styles.activeBorder
	}
	inner := max(width-2, 1)
	body := make([]string, 0, len(lines)+1)
	body = append(body, m.styles.title.Render(clip(title, inner)))
	body = append(body, lines...)
	return st.
		Width(inner).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(strings.Join(body, "\n"))
}

func (m Model) renderOverviewPane(l layout) string {
	if m.mode == modeCommit {
		inner := max(l.overview-2, 1)
		modal := m.styles.modalBorder.Width(max(inner-6, 10)).Render(strings.Join([]string{
			m.styles.accent.Render("Create Commit"),
			m.styles.muted.Render("Write commit message and press Enter"),
			"",
			m.commitInput.View(),
			"",
			m.styles.muted.Render("Esc cancels"),
		}, "\n"))
		body := lipgloss.Place(inner, max(l.height-3, 1), lipgloss.Center, lipgloss.Center, modal)
		return m.renderPane("selected file overview", []string{body}, l.overview, l.height, true)
	}
	lines := m.overviewLines()
	end := min(m.scroll+m.overviewRows(), len(lines))
	start := min(m.scroll, end)
	return m.renderPane("selected file overview", lines[start:end], l.overview, l.height, m.focus == paneOverview)
}

// filesLines renders the unstaged and staged sections. A row with changes
// on both sides is listed in both. The window follows the selection.
func (m Model) filesLines(width, rows int) []string {
	selected := -1
	if _, idx, ok := m.selectedRow(); ok {
		selected = idx
	}
	var unstaged, staged []int
	for _, idx := range m.visible {
		row := m.snap.Rows[idx]
		if row.Unstaged || row.Untracked {
			unstaged = append(unstaged, idx)
		}
		if row.Staged {
			staged = append(staged, idx)
		}
	}

	var lines []string
	focus := -1
	section := func(title string, idxs []int) {
		lines = append(lines, m.styles.accent.Render(fmt.Sprintf("%s (%d)", title, len(idxs))))
		if len(idxs) == 0 {
			lines = append(lines, m.styles.muted.Render("  clean"))
		}
		for _, idx := range idxs {
			if idx == selected && focus < 0 {
				focus = len(lines)
			}
			lines = append(lines, m.fileRow(m.snap.Rows[idx], idx == selected, width))
		}
	}
	section("unstaged", unstaged)
	lines = append(lines, "")
	section("staged", staged)

	if rows <= 0 || len(lines) <= rows {
		return lines
	}
	start := 0
	if focus >= rows {
		start = focus - rows + 1
	}
	return lines[start:min(start+rows, len(lines))]
}

func (m Model) fileRow(row changes.TreeRow, selected bool, width int) string {
	labelWidth := max(minLabelWidth, width-markWidth-deltaWidth)
	label := runewidth.FillRight(runewidth.Truncate(row.Label, labelWidth, ellipsisMark), labelWidth)
	mark := "  "
	if selected {
		text := selectedMark + label + fmt.Sprintf(" +%4d -%4d", row.Added, row.Removed)
		return m.styles.selected.Render(clip(text, width))
	}
	nameStyle := m.styles.file
	if row.Kind == changes.RowFolder {
		nameStyle = m.styles.folder
	}
	return mark + nameStyle.Render(label) +
		m.styles.added.Render(fmt.Sprintf(" +%4d", row.Added)) +
		m.styles.removed.Render(fmt.Sprintf(" -%4d", row.Removed))
}

// overviewLines is the full, unscrolled overview of the selected row.
func (m Model) overviewLines() []string {
	if _, _, ok := m.selectedRow(); !ok || m.overview == nil {
		return []string{m.styles.muted.Render("No changed file selected")}
	}
	ov := m.overview
	width := max(m.layout().overview-2, 1)
	lines := []string{
		m.styles.text.Render(clip("file: "+ov.Target, width)),
		m.styles.text.Render(clip("state: "+ov.State, width)),
		"",
		m.styles.accent.Render("files changes"),
		m.styles.added.Render(fmt.Sprintf("+%d", ov.Added)) + "  " + m.styles.removed.Render(fmt.Sprintf("-%d", ov.Removed)),
		"",
	}
	if !ov.UseSymbolView {
		if len(ov.Preview) == 0 {
			return append(lines, m.styles.muted.Render("No diff preview available"))
		}
		lines = append(lines, m.styles.accent.Render("diff preview:"))
		return append(lines, m.previewLines(ov, width)...)
	}
	for _, sec := range []struct {
		title string
		names changes.NameSet
		style lipgloss.Style
	}{
		{"methods added", ov.MethodsAdded, m.styles.added},
		{"methods modified", ov.MethodsModified, m.styles.modified},
		{"methods deleted", ov.MethodsDeleted, m.styles.removed},
	} {
		lines = append(lines, m.styles.accent.Render(sec.title))
		names := changes.BoundedNames(sec.names, m.limits)
		if len(names) == 0 {
			lines = append(lines, m.styles.muted.Render("- none"))
		}
		for _, name := range names {
			lines = append(lines, sec.style.Render(clip("- "+name, width)))
		}
		lines = append(lines, "")
	}
	return lines
}

func (m Model) previewLines(ov *changes.Overview, width int) []string {
	rows := make([]changes.PreviewLine, len(ov.Preview))
	for i, row := range ov.Preview {
		rows[i] = changes.PreviewLine{Kind: row.Kind, Text: clip(row.Text, width)}
	}
	if m.highlighter != nil {
		path := ov.Target
		if strings.HasSuffix(path, "/") {
			path = ""
		}
		return m.highlighter.renderPreview(rows, path, m.styles)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, kindStyle(row.Kind, m.styles).Render(row.Text))
	}
	return out
}

func (m Model) pulseLines(width int) []string {
	branch := m.snap.Branch
	if branch == "" {
		branch = changes.DefaultBranch
	}
	lines := []string{
		m.styles.text.Render(clip("Branch: "+branch, width)),
		m.styles.text.Render(fmt.Sprintf("Ahead: %d  Behind: %d", m.snap.Ahead, m.snap.Behind)),
		"",
		m.styles.added.Render(fmt.Sprintf("Staged files: %d", m.snap.StagedCount())),
		m.styles.modified.Render(fmt.Sprintf("Unstaged files: %d", m.snap.UnstagedCount())),
		"",
		m.styles.muted.Render(clip("Live refresh every ~"+m.interval.String(), width)),
	}
	if m.watching {
		lines = append(lines, m.styles.muted.Render("Watching file system"))
	}
	switch {
	case m.mode == modeFilter:
		lines = append(lines, "", m.filterInput.View())
	case m.filter != "":
		lines = append(lines, "", m.styles.warning.Render(clip("Filter: "+m.filter, width)))
	}
	lines = append(lines, "", m.styles.text.Render(wrap("Status: "+m.status, width)))
	return lines
}

func clip(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, ellipsisMark)
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.Wrap(text, width)
}
