package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

// highlighter colours the code part of preview lines. Lexers are cached
// per path since a folder preview switches files often.
type highlighter struct {
	style  *chroma.Style
	lexers map[string]chroma.Lexer
}

func newHighlighter(p colorPalette) *highlighter {
	return &highlighter{style: styleForPalette(p), lexers: map[string]chroma.Lexer{}}
}

func (h *highlighter) lexer(path string) chroma.Lexer {
	if h == nil || path == "" {
		return nil
	}
	if l, ok := h.lexers[path]; ok {
		return l
	}
	l := lexerForPath(path)
	h.lexers[path] = l
	return l
}

// renderPreview styles preview rows. path is the file the rows belong to;
// folder previews announce each file through a "file: " meta row.
func (h *highlighter) renderPreview(rows []changes.PreviewLine, path string, st styles) []string {
	out := make([]string, 0, len(rows))
	lexer := h.lexer(path)
	for _, row := range rows {
		if row.Kind == changes.PreviewMeta {
			if p, ok := strings.CutPrefix(row.Text, "file: "); ok {
				lexer = h.lexer(p)
			}
			out = append(out, st.meta.Render(row.Text))
			continue
		}
		base := kindStyle(row.Kind, st)
		if lexer == nil || h.style == nil {
			out = append(out, base.Render(row.Text))
			continue
		}
		sign, code := "", row.Text
		if row.Kind != changes.PreviewContext && code != "" {
			sign, code = code[:1], code[1:]
		}
		out = append(out, base.Render(sign)+h.highlightCode(lexer, code, base))
	}
	return out
}

func (h *highlighter) highlightCode(lexer chroma.Lexer, code string, base lipgloss.Style) string {
	if code == "" {
		return ""
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return base.Render(code)
	}
	var b strings.Builder
	for _, token := range iterator.Tokens() {
		value := strings.TrimRight(token.Value, "\n")
		if value == "" {
			continue
		}
		color := colorFromEntry(h.style.Get(token.Type))
		if color == "" {
			b.WriteString(base.Render(value))
			continue
		}
		b.WriteString(base.Foreground(lipgloss.Color(color)).Render(value))
	}
	return b.String()
}

func kindStyle(kind changes.PreviewKind, st styles) lipgloss.Style {
	switch kind {
	case changes.PreviewAdded:
		return st.added
	case changes.PreviewRemoved:
		return st.removed
	case changes.PreviewMeta:
		return st.meta
	default:
		return st.muted
	}
}

func styleForPalette(p colorPalette) *chroma.Style {
	if p.isDark() {
		if st := chromastyles.Get("github-dark"); st != nil {
			return st
		}
	} else {
		if st := chromastyles.Get("github"); st != nil {
			return st
		}
	}
	return chromastyles.Fallback
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if entry.Colour.IsSet() {
		col := entry.Colour.String()
		col = strings.TrimPrefix(strings.ToLower(col), "#")
		return "#" + col
	}
	return ""
}

// lexerForPath returns nil for files chroma does not recognise, which keeps
// them in the plain preview colours.
func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	return chroma.Coalesce(lexer)
}
