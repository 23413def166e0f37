package changes

import (
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Heuristic inspects one left-trimmed source line and returns the name of
// the function it defines, if any. The returned name is validated by the
// registry, so heuristics may return loose candidates.
type Heuristic func(line string) (string, bool)

// SymbolRegistry dispatches symbol extraction on file extension. Unknown
// extensions are resolved through chroma's filename patterns to a language
// name, and finally to a fallback heuristic.
//
// Registration is not synchronized; finish it before sharing the registry.
type SymbolRegistry struct {
	byExt    map[string]Heuristic
	byLang   map[string]Heuristic
	fallback Heuristic
}

// NewSymbolRegistry returns a registry with the built-in languages.
func NewSymbolRegistry() *SymbolRegistry {
	r := &SymbolRegistry{
		byExt:    map[string]Heuristic{},
		byLang:   map[string]Heuristic{},
		fallback: generalSymbol,
	}
	r.Register(pythonSymbol, "py", "pyi", "pyw")
	r.Register(rustSymbol, "rs")
	r.Register(jsSymbol, "js", "jsx", "ts", "tsx", "mjs", "cjs")
	r.Register(goSymbol, "go")
	r.RegisterLanguage("Python", pythonSymbol)
	r.RegisterLanguage("Python 2", pythonSymbol)
	r.RegisterLanguage("Rust", rustSymbol)
	r.RegisterLanguage("JavaScript", jsSymbol)
	r.RegisterLanguage("TypeScript", jsSymbol)
	r.RegisterLanguage("Go", goSymbol)
	return r
}

// Register binds h to each extension (with or without the leading dot).
func (r *SymbolRegistry) Register(h Heuristic, exts ...string) {
	for _, ext := range exts {
		r.byExt[normalizeExt(ext)] = h
	}
}

// RegisterLanguage binds h to a chroma lexer name such as "Python".
func (r *SymbolRegistry) RegisterLanguage(name string, h Heuristic) {
	r.byLang[strings.ToLower(name)] = h
}

func (r *SymbolRegistry) SetFallback(h Heuristic) {
	if h != nil {
		r.fallback = h
	}
}

// HeuristicFor resolves the heuristic used for files at path.
func (r *SymbolRegistry) HeuristicFor(filePath string) Heuristic {
	if h, ok := r.byExt[normalizeExt(path.Ext(filePath))]; ok {
		return h
	}
	if lexer := lexers.Match(path.Base(filePath)); lexer != nil {
		if h, ok := r.byLang[strings.ToLower(lexer.Config().Name)]; ok {
			return h
		}
	}
	return r.fallback
}

// Extract returns the symbol defined on line for a file with extension ext.
func (r *SymbolRegistry) Extract(line, ext string) (string, bool) {
	h, ok := r.byExt[normalizeExt(ext)]
	if !ok {
		h = r.fallback
	}
	return apply(h, line)
}

// ExtractPath is Extract with the full dispatch of HeuristicFor.
func (r *SymbolRegistry) ExtractPath(line, filePath string) (string, bool) {
	return apply(r.HeuristicFor(filePath), line)
}

func apply(h Heuristic, line string) (string, bool) {
	name, ok := h(strings.TrimLeft(line, " \t"))
	if !ok || !isIdentifier(name) {
		return "", false
	}
	return name, true
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func pythonSymbol(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "def "); ok {
		return identUntilParen(rest)
	}
	if rest, ok := strings.CutPrefix(s, "async def "); ok {
		return identUntilParen(rest)
	}
	return "", false
}

// rustSymbol accepts "fn name(" with any modifiers before it.
func rustSymbol(s string) (string, bool) {
	if idx := strings.Index(s, " fn "); idx >= 0 {
		return identUntilParen(s[idx+len(" fn "):])
	}
	if rest, ok := strings.CutPrefix(s, "fn "); ok {
		return identUntilParen(rest)
	}
	return "", false
}

func jsSymbol(s string) (string, bool) {
	s = strings.TrimPrefix(s, "export ")
	s = strings.TrimPrefix(s, "default ")
	if rest, ok := strings.CutPrefix(s, "function "); ok {
		return identUntilParen(rest)
	}
	if rest, ok := strings.CutPrefix(s, "async function "); ok {
		return identUntilParen(rest)
	}
	if rest, ok := strings.CutPrefix(s, "const "); ok && strings.Contains(rest, "=>") {
		left, _, _ := strings.Cut(rest, "=")
		return strings.TrimSpace(left), true
	}
	return "", false
}

// goSymbol skips an optional receiver and type parameters.
func goSymbol(s string) (string, bool) {
	rest, ok := strings.CutPrefix(s, "func ")
	if !ok {
		return "", false
	}
	if strings.HasPrefix(rest, "(") {
		_, after, found := strings.Cut(rest, ")")
		if !found {
			return "", false
		}
		rest = strings.TrimLeft(after, " \t")
	}
	if name, _, found := strings.Cut(rest, "["); found && !strings.Contains(name, "(") {
		rest = name + "("
	}
	return identUntilParen(rest)
}

func generalSymbol(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, "function "); ok {
		return identUntilParen(rest)
	}
	if rest, ok := strings.CutPrefix(s, "def "); ok {
		return identUntilParen(rest)
	}
	return "", false
}

func identUntilParen(text string) (string, bool) {
	name, _, _ := strings.Cut(text, "(")
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "{")
	return strings.TrimSpace(name), true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
