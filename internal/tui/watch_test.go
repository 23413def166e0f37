package tui

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchPaths(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, dir := range []string{".git/objects/ab", "src/pkg", "docs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	got := slices.Collect(watchPaths(root))
	require.ElementsMatch(t, []string{
		filepath.Join(root, ".git"),
		root,
		filepath.Join(root, "docs"),
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "pkg"),
	}, got)
	require.Equal(t, filepath.Join(root, ".git"), got[0])
	require.Empty(t, slices.Collect(watchPaths("")))
}

func TestShouldIgnoreWatchPath(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"/repo/.git/index.lock": true,
		"/repo/.git/HEAD.LOCK":  true,
		"/repo/run.ipc":         true,
		"/repo/.git/index":      false,
		"/repo/main.go":         false,
	}
	for path, want := range tests {
		require.Equal(t, want, shouldIgnoreWatchPath(path), path)
	}
}

func TestIsGitInternal(t *testing.T) {
	t.Parallel()
	require.True(t, isGitInternal("/repo", "/repo/.git/refs"))
	require.True(t, isGitInternal("/repo", "/repo/.git"))
	require.False(t, isGitInternal("/repo", "/repo/src/.gitkeep"))
	require.False(t, isGitInternal("/repo", "/repo/src"))
}

func TestWaitForChange(t *testing.T) {
	t.Parallel()
	require.Nil(t, waitForChange(nil))

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	require.Equal(t, fsChangedMsg{}, waitForChange(ch)())

	close(ch)
	require.Nil(t, waitForChange(ch)())
}

func TestWatcherNotifiesOnWrite(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	w, err := startWatcher(root)
	if err != nil {
		t.Skipf("file watching unavailable: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	select {
	case _, ok := <-w.C():
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, ok := <-w.C()
	require.False(t, ok)
}
