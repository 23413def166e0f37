package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

type RunConfig struct {
	Interval        time.Duration
	ThemePreference ThemePreference
	// AutoRefresh watches the repository and refreshes on changes, on top
	// of the interval timer.
	AutoRefresh     bool
	SyntaxHighlight bool
	Limits          changes.Limits
}

// Run shows the dashboard for svc until the user quits or ctx is done.
func Run(ctx context.Context, svc Service, cfg RunConfig) error {
	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	opts := Options{
		Interval: cfg.Interval,
		Theme:    pref,
		Syntax:   cfg.SyntaxHighlight,
		Limits:   cfg.Limits,
	}
	if cfg.AutoRefresh {
		w, err := startWatcher(svc.RepoPath())
		if err != nil {
			// The timer still refreshes, so a missing watcher is not fatal.
			slog.Warn("file watcher unavailable", slog.Any("error", err))
		} else {
			defer func() {
				if err := w.Close(); err != nil {
					slog.Debug("close watcher", slog.Any("error", err))
				}
			}()
			opts.Changes = w.C()
		}
	}

	p := tea.NewProgram(New(ctx, svc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
