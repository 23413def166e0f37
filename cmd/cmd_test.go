package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitpulse/internal/changes"
	"github.com/thiagokokada/gitpulse/internal/git"
	gitbackend "github.com/thiagokokada/gitpulse/internal/git/backend"
	"github.com/thiagokokada/gitpulse/internal/tui"
)

type started struct {
	repoPath string
	opts     git.Options
	cfg      tui.RunConfig
}

// captureStart replaces the dashboard with a recorder and isolates the
// settings file lookup from the user's home.
func captureStart(t *testing.T) *started {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	got := &started{}
	prev := startDashboard
	startDashboard = func(_ context.Context, repoPath string, opts git.Options, cfg tui.RunConfig) error {
		got.repoPath = repoPath
		got.opts = opts
		got.cfg = cfg
		return nil
	}
	t.Cleanup(func() { startDashboard = prev })
	return got
}

func TestRunDefaults(t *testing.T) {
	got := captureStart(t)

	require.NoError(t, run(context.Background(), nil, &bytes.Buffer{}))
	require.Equal(t, ".", got.repoPath)
	require.Equal(t, gitbackend.KindCLI, got.opts.Backend)
	require.Equal(t, changes.DefaultLimits(), got.opts.Limits)
	require.Equal(t, 700*time.Millisecond, got.cfg.Interval)
	require.Equal(t, tui.ThemeAuto, got.cfg.ThemePreference)
	require.True(t, got.cfg.AutoRefresh)
	require.True(t, got.cfg.SyntaxHighlight)
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	got := captureStart(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
theme = "light"
backend = "native"
refresh_interval = "2s"
syntax = false

[limits]
symbol_rows = 3
`), 0o644))

	args := []string{"-config", path, "-mode", "dark", "-interval", "1s", "-nowatch", "repo"}
	require.NoError(t, run(context.Background(), args, &bytes.Buffer{}))
	require.Equal(t, "repo", got.repoPath)
	require.Equal(t, gitbackend.KindNative, got.opts.Backend)
	require.Equal(t, 3, got.opts.Limits.SymbolRows)
	require.Equal(t, time.Second, got.cfg.Interval)
	require.Equal(t, tui.ThemeDark, got.cfg.ThemePreference)
	require.False(t, got.cfg.AutoRefresh)
	require.False(t, got.cfg.SyntaxHighlight)
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	captureStart(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "backend", args: []string{"-backend", "svn"}},
		{name: "interval", args: []string{"-interval", "10ms"}},
		{name: "mode", args: []string{"-mode", "sepia"}},
		{name: "unknown_flag", args: []string{"-limit", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, run(context.Background(), tt.args, &bytes.Buffer{}))
		})
	}
}

func TestRunVersion(t *testing.T) {
	got := captureStart(t)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	require.NotEmpty(t, out.String())
	require.Empty(t, got.repoPath)
}

func TestRunWritesLogFile(t *testing.T) {
	captureStart(t)
	logPath := filepath.Join(t.TempDir(), "gitpulse.log")

	require.NoError(t, run(context.Background(), []string{"-log", logPath, "-verbose"}, &bytes.Buffer{}))
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "msg=starting")
}
