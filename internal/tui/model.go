// Package tui renders the change dashboard: a files pane with the change
// tree, the overview of the selected row and a pulse pane with branch
// state, refreshed on a timer and on file system activity.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thiagokokada/gitpulse/internal/changes"
	"github.com/thiagokokada/gitpulse/internal/git"
)

const (
	DefaultRefreshInterval = 700 * time.Millisecond
	// defaultOverviewRows is the overview height assumed before the first
	// window size is known.
	defaultOverviewRows = 22
)

// Service is the repository side of the dashboard.
type Service interface {
	RepoPath() string
	Refresh(ctx context.Context) (changes.Snapshot, error)
	Overview(ctx context.Context, snap changes.Snapshot, idx int) (changes.Overview, bool)
	ToggleStage(ctx context.Context, row changes.TreeRow) (string, error)
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context) (string, error)
}

type pane int

const (
	paneFiles pane = iota
	paneOverview
)

type mode int

const (
	modeNormal mode = iota
	modeCommit
	modeFilter
)

type (
	tickMsg      struct{}
	fsChangedMsg struct{}

	snapshotMsg struct {
		snap changes.Snapshot
		err  error
	}

	overviewMsg struct {
		gen      int
		path     string
		overview changes.Overview
		ok       bool
	}

	// actionMsg reports the outcome of a stage, commit or push.
	actionMsg struct {
		status string
		err    error
	}
)

type Model struct {
	ctx  context.Context
	svc  Service
	keys KeyMap
	help help.Model

	interval time.Duration
	limits   changes.Limits
	watching bool
	changes  <-chan struct{}

	palette     colorPalette
	styles      styles
	highlighter *highlighter

	snap     changes.Snapshot
	gen      int
	visible  []int
	selected int
	overview *changes.Overview
	scroll   int
	focus    pane
	mode     mode
	status   string

	commitInput textinput.Model
	filterInput textinput.Model
	filter      string

	refreshing     bool
	refreshPending bool

	width  int
	height int
}

type Options struct {
	Interval time.Duration
	Theme    ThemePreference
	Syntax   bool
	Limits   changes.Limits
	// Changes, when set, triggers a refresh on every receive.
	Changes <-chan struct{}
}

func New(ctx context.Context, svc Service, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultRefreshInterval
	}
	pal := paletteForPreference(opts.Theme)

	commitInput := textinput.New()
	commitInput.Placeholder = "commit message"
	commitInput.CharLimit = 200
	commitInput.Prompt = "> "

	filterInput := textinput.New()
	filterInput.Placeholder = "path filter"
	filterInput.CharLimit = 100
	filterInput.Prompt = "/"

	m := Model{
		ctx:         ctx,
		svc:         svc,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		interval:    opts.Interval,
		limits:      opts.Limits.Normalize(),
		watching:    opts.Changes != nil,
		changes:     opts.Changes,
		palette:     pal,
		styles:      newStyles(pal),
		snap:        changes.EmptySnapshot(),
		status:      "Ready",
		refreshing:  true,
		commitInput: commitInput,
		filterInput: filterInput,
	}
	if opts.Syntax {
		m.highlighter = newHighlighter(pal)
	}
	return m
}

// Init starts the first refresh; New already marks it as in flight.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.tickCmd(), waitForChange(m.changes))
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		snap, err := svc.Refresh(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

// requestRefresh starts a refresh unless one is in flight, in which case
// another one runs right after it.
func (m *Model) requestRefresh() tea.Cmd {
	if m.refreshing {
		m.refreshPending = true
		return nil
	}
	m.refreshing = true
	return m.refreshCmd()
}

func (m Model) overviewCmd() tea.Cmd {
	row, idx, ok := m.selectedRow()
	if !ok {
		return nil
	}
	ctx, svc, snap, gen := m.ctx, m.svc, m.snap, m.gen
	return func() tea.Msg {
		ov, ok := svc.Overview(ctx, snap, idx)
		return overviewMsg{gen: gen, path: row.Path, overview: ov, ok: ok}
	}
}

func (m Model) actionCmd(run func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		out, err := run(ctx)
		return actionMsg{status: out, err: err}
	}
}

// selectedRow returns the selected row and its index in the snapshot.
func (m Model) selectedRow() (changes.TreeRow, int, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return changes.TreeRow{}, 0, false
	}
	idx := m.visible[m.selected]
	row, ok := m.snap.Row(idx)
	return row, idx, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeCommit:
			return m.updateCommit(msg)
		case modeFilter:
			return m.updateFilter(msg)
		default:
			return m.updateNormal(msg)
		}

	case tickMsg:
		return m, tea.Batch(m.requestRefresh(), m.tickCmd())

	case fsChangedMsg:
		slog.Debug("refresh after file system change")
		return m, tea.Batch(m.requestRefresh(), waitForChange(m.changes))

	case snapshotMsg:
		return m.applySnapshot(msg)

	case overviewMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if row, _, ok := m.selectedRow(); !ok || row.Path != msg.path || !msg.ok {
			return m, nil
		}
		ov := msg.overview
		m.overview = &ov
		m.clampScroll()
		return m, nil

	case actionMsg:
		if errors.Is(msg.err, git.ErrEmptyCommitMessage) {
			m.status = "Commit message is empty"
			return m, nil
		}
		if msg.err != nil {
			slog.Error("action failed", slog.Any("error", msg.err))
			m.status = statusText(msg.err.Error())
		} else if msg.status != "" {
			m.status = statusText(msg.status)
		}
		return m, m.requestRefresh()
	}
	return m, nil
}

func (m Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	m.refreshing = false
	if msg.err != nil {
		slog.Error("refresh failed", slog.Any("error", msg.err))
		m.status = statusText(msg.err.Error())
	}
	var prevPath string
	if row, _, ok := m.selectedRow(); ok {
		prevPath = row.Path
	}
	m.snap = msg.snap
	m.gen++
	m.visible = filterRows(m.snap.Rows, m.filter)
	m.clampSelection()
	if row, _, ok := m.selectedRow(); !ok {
		m.overview = nil
		m.scroll = 0
	} else if row.Path != prevPath {
		m.scroll = 0
	}

	cmds := []tea.Cmd{m.overviewCmd()}
	if m.refreshPending {
		m.refreshPending = false
		cmds = append(cmds, m.requestRefresh())
	}
	return m, tea.Batch(cmds...)
}

// clampSelection keeps the selection position, pulling it back when the
// list shrank.
func (m *Model) clampSelection() {
	if len(m.visible) == 0 {
		m.selected = 0
		return
	}
	m.selected = min(max(m.selected, 0), len(m.visible)-1)
}

func (m *Model) clampScroll() {
	m.scroll = min(max(m.scroll, 0), m.maxScroll())
}

func (m Model) maxScroll() int {
	return max(len(m.overviewLines())-m.overviewRows(), 0)
}

// overviewRows is the number of overview lines that fit in the pane.
func (m Model) overviewRows() int {
	if m.height <= 0 {
		return defaultOverviewRows
	}
	// Footer box, pane borders and the pane title.
	return max(m.height-footerHeight-3, 1)
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.focus = paneFiles
	case key.Matches(msg, m.keys.Right):
		m.focus = paneOverview
	case key.Matches(msg, m.keys.Down):
		if m.focus == paneOverview {
			m.scroll = min(m.scroll+1, m.maxScroll())
			return m, nil
		}
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		if m.focus == paneOverview {
			m.scroll = max(m.scroll-1, 0)
			return m, nil
		}
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.requestRefresh()
	case key.Matches(msg, m.keys.Toggle):
		row, _, ok := m.selectedRow()
		if !ok {
			m.status = "No item selected"
			return m, nil
		}
		svc := m.svc
		return m, m.actionCmd(func(ctx context.Context) (string, error) {
			return svc.ToggleStage(ctx, row)
		})
	case key.Matches(msg, m.keys.Commit):
		m.mode = modeCommit
		m.commitInput.Reset()
		m.status = "Commit mode: type a message and press Enter"
		return m, m.commitInput.Focus()
	case key.Matches(msg, m.keys.Push):
		m.status = "Pushing..."
		return m, m.actionCmd(m.svc.Push)
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.filterInput.SetValue(m.filter)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	}
	return m, nil
}

// moveSelection moves by delta, wrapping at both ends, and resets the
// overview scroll.
func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	n := len(m.visible)
	if n == 0 {
		m.selected = 0
		return m, nil
	}
	m.selected = ((m.selected+delta)%n + n) % n
	m.scroll = 0
	return m, m.overviewCmd()
}

func (m Model) updateCommit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.commitInput.Blur()
		m.status = "Commit cancelled"
		return m, nil
	case tea.KeyEnter:
		message := strings.TrimSpace(m.commitInput.Value())
		m.mode = modeNormal
		m.commitInput.Blur()
		m.commitInput.Reset()
		if message == "" {
			m.status = "Commit message is empty"
			return m, nil
		}
		svc := m.svc
		return m, m.actionCmd(func(ctx context.Context) (string, error) {
			return svc.Commit(ctx, message)
		})
	}
	var cmd tea.Cmd
	m.commitInput, cmd = m.commitInput.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.filterInput.Blur()
		m.filterInput.Reset()
		return m.setFilter("")
	case tea.KeyEnter:
		m.mode = modeNormal
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	next, ocmd := m.setFilter(m.filterInput.Value())
	return next, tea.Batch(cmd, ocmd)
}

func (m Model) setFilter(query string) (Model, tea.Cmd) {
	if query == m.filter {
		return m, nil
	}
	m.filter = query
	m.visible = filterRows(m.snap.Rows, query)
	m.selected = 0
	m.scroll = 0
	m.overview = nil
	if query != "" {
		m.status = fmt.Sprintf("Filter: %d of %d rows", len(m.visible), len(m.snap.Rows))
	}
	return m, m.overviewCmd()
}

// statusText keeps the first non-empty line of a message.
func statusText(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
