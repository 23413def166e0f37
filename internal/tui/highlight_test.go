package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

func TestLexerForPath(t *testing.T) {
	t.Parallel()
	require.NotNil(t, lexerForPath("main.go"))
	require.NotNil(t, lexerForPath("src/app.py"))
	require.Nil(t, lexerForPath(""))
	require.Nil(t, lexerForPath("notes.unknown-ext"))
}

func TestRenderPreviewKeepsText(t *testing.T) {
	t.Parallel()
	h := newHighlighter(lightPalette)
	st := newStyles(lightPalette)
	rows := []changes.PreviewLine{
		{Kind: changes.PreviewMeta, Text: "file: cmd/main.go"},
		{Kind: changes.PreviewAdded, Text: "+func main() {}"},
		{Kind: changes.PreviewRemoved, Text: "-"},
		{Kind: changes.PreviewContext, Text: "package main"},
	}

	out := h.renderPreview(rows, "", st)
	require.Len(t, out, len(rows))
	require.Contains(t, out[0], "file: cmd/main.go")
	require.Contains(t, out[1], "func")
	require.Contains(t, out[1], "main")
	require.Contains(t, out[2], "-")
	require.Contains(t, out[3], "package")
	require.Contains(t, h.lexers, "cmd/main.go")
}

func TestNilHighlighterIsPlain(t *testing.T) {
	t.Parallel()
	var h *highlighter
	require.Nil(t, h.lexer("main.go"))
}
