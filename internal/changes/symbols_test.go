package changes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSymbol(t *testing.T) {
	t.Parallel()

	reg := NewSymbolRegistry()
	tests := []struct {
		name string
		ext  string
		line string
		want string
	}{
		{name: "python_def", ext: "py", line: "def handler(event, ctx):", want: "handler"},
		{name: "python_async", ext: "py", line: "    async def fetch(self):", want: "fetch"},
		{name: "python_class_ignored", ext: "py", line: "class Handler:", want: ""},
		{name: "rust_fn", ext: "rs", line: "fn main() {", want: "main"},
		{name: "rust_pub_async", ext: "rs", line: "pub async fn serve(addr: &str) -> Result<()> {", want: "serve"},
		{name: "rust_generic_rejected", ext: "rs", line: "fn parse<T>(s: &str) -> T {", want: ""},
		{name: "js_function", ext: "js", line: "function render(props) {", want: "render"},
		{name: "js_async_function", ext: "ts", line: "async function load() {", want: "load"},
		{name: "js_exported", ext: "tsx", line: "export function App() {", want: "App"},
		{name: "js_arrow", ext: "mjs", line: "const onClick = (e) => {", want: "onClick"},
		{name: "js_const_value", ext: "js", line: "const limit = 10;", want: ""},
		{name: "go_func", ext: "go", line: "func Run() error {", want: "Run"},
		{name: "go_method", ext: "go", line: "func (s *Service) Refresh(ctx context.Context) {", want: "Refresh"},
		{name: "go_generic", ext: "go", line: "func Map[T any](xs []T) []T {", want: "Map"},
		{name: "go_func_literal", ext: "go", line: "func(x int) {", want: ""},
		{name: "fallback_function", ext: "lua", line: "function update(dt)", want: "update"},
		{name: "fallback_def", ext: "rb", line: "def initialize(name)", want: "initialize"},
		{name: "fallback_ignores_fn", ext: "zig", line: "fn main() void {", want: ""},
		{name: "dotted_extension", ext: ".py", line: "def x():", want: "x"},
		{name: "uppercase_extension", ext: "GO", line: "func X() {", want: "X"},
		{name: "digit_start_rejected", ext: "py", line: "def 1abc():", want: ""},
		{name: "unicode_rejected", ext: "py", line: "def café():", want: ""},
		{name: "empty", ext: "py", line: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := reg.Extract(tt.line, tt.ext)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want != "", ok)
		})
	}
}

func TestRegistryCustomLanguage(t *testing.T) {
	t.Parallel()

	reg := NewSymbolRegistry()
	reg.Register(func(s string) (string, bool) {
		rest, ok := strings.CutPrefix(s, "sub ")
		if !ok {
			return "", false
		}
		name, _, _ := strings.Cut(rest, " ")
		return name, true
	}, "pl")

	got, ok := reg.Extract("sub greet {", "pl")
	require.True(t, ok)
	require.Equal(t, "greet", got)

	_, ok = reg.Extract("sub greet {", "txt")
	require.False(t, ok)
}

func TestRegistryResolvesLanguageByFilename(t *testing.T) {
	t.Parallel()

	reg := NewSymbolRegistry()
	// SConstruct has no extension; chroma knows it as Python.
	got, ok := reg.ExtractPath("async def build(env):", "tools/SConstruct")
	require.True(t, ok)
	require.Equal(t, "build", got)

	_, ok = reg.ExtractPath("async def build(env):", "notes/README")
	require.False(t, ok)
}

func TestRegistryFallbackOverride(t *testing.T) {
	t.Parallel()

	reg := NewSymbolRegistry()
	reg.SetFallback(func(string) (string, bool) { return "always", true })
	got, ok := reg.Extract("anything", "unknown")
	require.True(t, ok)
	require.Equal(t, "always", got)

	reg.SetFallback(nil)
	got, ok = reg.Extract("anything", "unknown")
	require.True(t, ok)
	require.Equal(t, "always", got)
}
