package backend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

// hunkContextWidth caps the function context git appends to hunk headers.
const hunkContextWidth = 80

type localChange struct {
	path string
	from *object.File
	to   *object.File
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s from HEAD: %w", path, err)
	}
	return f, nil
}

func fileFromDisk(root, path string) (*object.File, error) {
	if root == "" {
		return nil, fmt.Errorf("repository root not set")
	}
	file, err := os.Open(filepath.Join(root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	mem := &plumbing.MemoryObject{}
	mem.SetType(plumbing.BlobObject)
	if _, err := mem.Write(data); err != nil {
		return nil, err
	}
	blob, err := object.DecodeBlob(mem)
	if err != nil {
		return nil, err
	}
	mode := filemode.Regular
	if m, err := filemode.NewFromOSFileMode(info.Mode()); err == nil {
		mode = m
	}
	return object.NewFile(path, mode, blob), nil
}

func binaryChange(ch localChange) (bool, error) {
	for _, f := range []*object.File{ch.from, ch.to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return nil, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return splitLines(content), nil
}

// splitLines keeps line terminators so a missing final newline still
// registers as a change.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func changeOpCodes(ch localChange) ([]string, []string, []difflib.OpCode, error) {
	a, err := fileLines(ch.from)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := fileLines(ch.to)
	if err != nil {
		return nil, nil, nil, err
	}
	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	return a, b, m.GetOpCodes(), nil
}

// numstatLine renders one `git diff --numstat` row.
func numstatLine(ch localChange) (string, error) {
	bin, err := binaryChange(ch)
	if err != nil {
		return "", err
	}
	if bin {
		return fmt.Sprintf("-\t-\t%s\n", quotePath(ch.path)), nil
	}
	_, _, ops, err := changeOpCodes(ch)
	if err != nil {
		return "", err
	}
	added, removed := 0, 0
	for _, op := range ops {
		switch op.Tag {
		case 'r':
			added += op.J2 - op.J1
			removed += op.I2 - op.I1
		case 'i':
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		}
	}
	return fmt.Sprintf("%d\t%d\t%s\n", added, removed, quotePath(ch.path)), nil
}

// renderZeroContext renders a `git diff --unified=0` style patch for one
// path, including the function context git puts after each hunk header.
func renderZeroContext(ch localChange) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", ch.path, ch.path)
	bin, err := binaryChange(ch)
	if err != nil {
		return "", err
	}
	from, to := "a/"+ch.path, "b/"+ch.path
	if ch.from == nil {
		from = "/dev/null"
	}
	if ch.to == nil {
		to = "/dev/null"
	}
	if bin {
		fmt.Fprintf(&b, "Binary files %s and %s differ\n", from, to)
		return b.String(), nil
	}
	a, bl, ops, err := changeOpCodes(ch)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", from, to)
	for _, op := range ops {
		if op.Tag == 'e' {
			continue
		}
		fmt.Fprintf(&b, "@@ -%s +%s @@", hunkRange(op.I1, op.I2), hunkRange(op.J1, op.J2))
		if fn := functionContext(a, op.I1); fn != "" {
			b.WriteByte(' ')
			b.WriteString(fn)
		}
		b.WriteByte('\n')
		for _, line := range a[op.I1:op.I2] {
			writePatchLine(&b, '-', line)
		}
		for _, line := range bl[op.J1:op.J2] {
			writePatchLine(&b, '+', line)
		}
	}
	return b.String(), nil
}

func writePatchLine(b *strings.Builder, sign byte, line string) {
	b.WriteByte(sign)
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteString("\n\\ No newline at end of file\n")
	}
}

// hunkRange formats a half-open line range the way unified diffs do: a
// single line has no length and an empty range points at the line before.
func hunkRange(start, stop int) string {
	switch length := stop - start; length {
	case 0:
		return fmt.Sprintf("%d,0", start)
	case 1:
		return fmt.Sprintf("%d", start+1)
	default:
		return fmt.Sprintf("%d,%d", start+1, length)
	}
}

// functionContext finds the closest line above start that looks like a
// definition, using git's default rule: the line begins with a letter,
// underscore or dollar sign.
func functionContext(lines []string, start int) string {
	for i := min(start, len(lines)) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], " \t\r\n")
		if line == "" {
			continue
		}
		c := line[0]
		if c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			if len(line) > hunkContextWidth {
				line = line[:hunkContextWidth]
			}
			return line
		}
	}
	return ""
}
