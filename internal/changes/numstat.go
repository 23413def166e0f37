package changes

import "strings"

// ParseNumstat parses `git diff --numstat` output into per-path deltas.
// Counts that are not numbers (binary files report "-") become zero, and
// every path in entries gets a delta even when the report omits it.
func ParseNumstat(report string, entries []PathEntry) map[string]PathDelta {
	deltas := make(map[string]PathDelta, len(entries))
	for raw := range strings.Lines(report) {
		line := strings.TrimRight(raw, "\r\n")
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}
		path := numstatPath(strings.TrimSpace(parts[2]))
		if path == "" {
			continue
		}
		deltas[path] = PathDelta{
			Added:   parseCount(parts[0]),
			Removed: parseCount(parts[1]),
		}
	}
	for _, entry := range entries {
		if _, ok := deltas[entry.Path]; !ok {
			deltas[entry.Path] = PathDelta{}
		}
	}
	return deltas
}

// numstatPath resolves rename notation to the destination path:
// "old => new" and "dir/{old => new}/file".
func numstatPath(path string) string {
	if !strings.Contains(path, " => ") {
		return unquotePath(path)
	}
	open := strings.IndexByte(path, '{')
	closing := strings.LastIndexByte(path, '}')
	if open >= 0 && closing > open {
		inner := path[open+1 : closing]
		if _, to, ok := strings.Cut(inner, " => "); ok {
			joined := path[:open] + to + path[closing+1:]
			return strings.TrimPrefix(strings.ReplaceAll(joined, "//", "/"), "/")
		}
	}
	_, to, _ := strings.Cut(path, " => ")
	return unquotePath(strings.TrimSpace(to))
}
