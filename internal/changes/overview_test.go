package changes

import (
	"errors"
	"os"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	diffs map[string]string
	files map[string][]byte
	reads []string
}

func (f *fakeSource) FileDiff(path string) (string, error) {
	diff, ok := f.diffs[path]
	if !ok {
		return "", errors.New("no diff")
	}
	return diff, nil
}

func (f *fakeSource) ReadFile(path string) ([]byte, error) {
	f.reads = append(f.reads, path)
	data, ok := f.files[path]
	if !ok {
		return nil, os.ErrPermission
	}
	return data, nil
}

func TestAggregatorFolderUnionsChildren(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		diffs: map[string]string{
			"pkg/a.go": "@@ -1,0 +2,2 @@ package pkg\n+func a() {\n+}\n",
			"pkg/b.go": "@@ -4 +4 @@ func b() {\n-\treturn 1\n+\treturn 2\n",
		},
	}
	files := []PathEntry{
		{Path: "pkg/a.go", Unstaged: true},
		{Path: "pkg/b.go", Staged: true},
		{Path: "pkgother/c.go", Unstaged: true},
	}
	agg := NewAggregator(src, nil, DefaultLimits())

	row := TreeRow{Path: "pkg", Kind: RowFolder, PathStatus: PathStatus{Staged: true, Unstaged: true}}
	got := agg.Row(row, files)
	require.Equal(t, "pkg/", got.Target)
	require.Equal(t, "staged, unstaged", got.State)
	require.Equal(t, 3, got.Added)
	require.Equal(t, 1, got.Removed)
	require.Equal(t, []string{"a"}, got.MethodsAdded.Sorted())
	require.Equal(t, []string{"b"}, got.MethodsModified.Sorted())
	require.Zero(t, got.MethodsDeleted.Len())
	require.True(t, got.UseSymbolView)

	require.Equal(t, PreviewLine{Kind: PreviewMeta, Text: "file: pkg/a.go"}, got.Preview[0])
	require.Equal(t, PreviewLine{Kind: PreviewMeta, Text: "file: pkg/b.go"}, got.Preview[4])
	require.Len(t, got.Preview, 8)
}

func TestAggregatorFolderPreviewCap(t *testing.T) {
	t.Parallel()

	diff := "@@ -1,0 +1,10 @@\n+1\n+2\n+3\n+4\n+5\n+6\n+7\n+8\n+9\n+10\n"
	src := &fakeSource{diffs: map[string]string{}}
	var files []PathEntry
	for _, name := range []string{"d/1", "d/2", "d/3", "d/4", "d/5"} {
		src.diffs[name] = diff
		files = append(files, PathEntry{Path: name, Unstaged: true})
	}
	lim := DefaultLimits()
	agg := NewAggregator(src, nil, lim)

	got := agg.Folder(TreeRow{Path: "d", Kind: RowFolder}, files)
	require.Equal(t, 50, got.Added)
	require.Len(t, got.Preview, lim.FolderPreviewRows)
	require.False(t, got.UseSymbolView)
	// Each file contributes a marker plus FolderFileRows rows.
	require.Equal(t, "file: d/1", got.Preview[0].Text)
	require.Equal(t, "file: d/2", got.Preview[1+lim.FolderFileRows].Text)
}

func TestAggregatorUntrackedFile(t *testing.T) {
	t.Parallel()

	src := &fakeSource{files: map[string][]byte{
		"tool.py": []byte("import os\n\ndef main():\n"),
	}}
	agg := NewAggregator(src, nil, DefaultLimits())

	got := agg.File(PathEntry{Path: "tool.py", Unstaged: true, Untracked: true})
	require.Equal(t, "tool.py", got.Target)
	require.Equal(t, "unstaged, new", got.State)
	require.Equal(t, 3, got.Added)
	require.Zero(t, got.Removed)
	require.Equal(t, []string{"main"}, got.MethodsAdded.Sorted())
	require.True(t, got.UseSymbolView)
}

func TestAggregatorDegradesOnSourceErrors(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	agg := NewAggregator(src, nil, DefaultLimits())

	untracked := agg.File(PathEntry{Path: "gone.txt", Untracked: true})
	require.Zero(t, untracked.Added)
	require.Empty(t, untracked.Preview)
	require.False(t, untracked.UseSymbolView)
	require.Equal(t, []string{"gone.txt"}, src.reads)

	tracked := agg.File(PathEntry{Path: "broken.go", Unstaged: true})
	require.Zero(t, tracked.Added)
	require.Zero(t, tracked.Removed)
	require.False(t, tracked.UseSymbolView)
}

func TestBuildSnapshot(t *testing.T) {
	t.Parallel()

	status := "## main...origin/main [ahead 2, behind 1]\n" +
		" M src/app.go\n" +
		"A  src/new.go\n" +
		"?? notes/todo.txt\n" +
		"?? notes/locked.txt\n"
	numstat := "5\t2\tsrc/app.go\n3\t0\tsrc/new.go\n"
	read := func(path string) ([]byte, error) {
		if path == "notes/todo.txt" {
			return []byte("one\ntwo\nthree\nfour\n"), nil
		}
		return nil, os.ErrPermission
	}

	snap := BuildSnapshot(status, numstat, read)
	require.Equal(t, "main", snap.Branch)
	require.Equal(t, 2, snap.Ahead)
	require.Equal(t, 1, snap.Behind)
	require.Len(t, snap.Files, 4)
	require.Equal(t, 1, snap.StagedCount())
	require.Equal(t, 3, snap.UnstagedCount())
	require.Equal(t, PathDelta{Added: 4}, snap.Deltas["notes/todo.txt"])
	require.Equal(t, PathDelta{}, snap.Deltas["notes/locked.txt"])

	labels := make([]string, len(snap.Rows))
	for i, row := range snap.Rows {
		labels[i] = row.Label
	}
	require.Equal(t, []string{"notes/", "  locked.txt", "  todo.txt", "src/", "  app.go", "  new.go"}, labels)
	require.Equal(t, PathDelta{Added: 4}, snap.Rows[0].PathDelta)
	require.Equal(t, PathDelta{Added: 8, Removed: 2}, snap.Rows[3].PathDelta)

	row, ok := snap.Row(5)
	require.True(t, ok)
	require.Equal(t, "src/new.go", row.Path)
	_, ok = snap.Row(6)
	require.False(t, ok)
}

func TestEmptySnapshot(t *testing.T) {
	t.Parallel()

	snap := EmptySnapshot()
	require.Empty(t, snap.Branch)
	require.Empty(t, snap.Rows)
	require.Zero(t, snap.StagedCount())
	require.Zero(t, snap.UnstagedCount())
	_, ok := snap.Row(0)
	require.False(t, ok)
}

func TestOverviewBoundsHoldForLargeInput(t *testing.T) {
	t.Parallel()

	long := make([]byte, 0, 4096)
	for range 200 {
		long = append(long, []byte("def f_with_a_rather_long_name_that_goes_on_and_on_and_on_forever(x):\n")...)
	}
	src := &fakeSource{files: map[string][]byte{"big.py": long}}
	lim := DefaultLimits()
	got := NewAggregator(src, nil, lim).File(PathEntry{Path: "big.py", Untracked: true})
	require.LessOrEqual(t, len(got.Preview), lim.UntrackedPreviewRows)
	for _, row := range got.Preview {
		require.LessOrEqual(t, utf8.RuneCountInString(row.Text), lim.PreviewChars)
	}
	for _, name := range BoundedNames(got.MethodsAdded, lim) {
		require.LessOrEqual(t, utf8.RuneCountInString(name), lim.SymbolChars)
	}
}
