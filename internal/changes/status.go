package changes

import (
	"strconv"
	"strings"
)

// StatusReport is the parsed form of `git status --porcelain=1 -b`.
type StatusReport struct {
	Branch  string
	Ahead   int
	Behind  int
	Entries []PathEntry
}

// ParseStatus parses a porcelain v1 status report. The first line is the
// branch header; every following line is "XY path". Malformed lines are
// skipped.
func ParseStatus(report string) StatusReport {
	res := StatusReport{Branch: DefaultBranch}
	first := true
	for raw := range strings.Lines(report) {
		line := strings.TrimRight(raw, "\r\n")
		if first {
			first = false
			res.Branch, res.Ahead, res.Behind = parseBranchLine(line)
			continue
		}
		entry, ok := parseStatusLine(line)
		if !ok {
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	return res
}

// unbornPrefixes are what git prints before the branch name while HEAD has
// no commits yet, in current and older versions.
var unbornPrefixes = []string{"No commits yet on ", "Initial commit on "}

func parseBranchLine(line string) (branch string, ahead, behind int) {
	line = strings.TrimPrefix(line, "## ")
	for _, prefix := range unbornPrefixes {
		if name, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(name), 0, 0
		}
	}
	name, rest, found := strings.Cut(line, "...")
	if !found {
		return strings.TrimSpace(line), 0, 0
	}
	branch = strings.TrimSpace(name)
	start := strings.IndexByte(rest, '[')
	if start < 0 {
		return branch, 0, 0
	}
	info, _, closed := strings.Cut(rest[start+1:], "]")
	if !closed {
		return branch, 0, 0
	}
	for token := range strings.SplitSeq(info, ",") {
		token = strings.TrimSpace(token)
		if v, ok := strings.CutPrefix(token, "ahead "); ok {
			ahead = parseCount(v)
		}
		if v, ok := strings.CutPrefix(token, "behind "); ok {
			behind = parseCount(v)
		}
	}
	return branch, ahead, behind
}

func parseStatusLine(line string) (PathEntry, bool) {
	if len(line) < 4 {
		return PathEntry{}, false
	}
	x, y := line[0], line[1]
	path := strings.TrimSpace(line[3:])
	if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
		if _, to, ok := strings.Cut(path, " -> "); ok {
			path = to
		}
	}
	path = unquotePath(path)
	if path == "" {
		return PathEntry{}, false
	}
	return PathEntry{
		Path:      path,
		Staged:    x != ' ' && x != '?',
		Unstaged:  y != ' ',
		Untracked: x == '?' && y == '?',
	}, true
}

// unquotePath undoes git's C-style quoting of paths with unusual bytes.
func unquotePath(path string) string {
	if len(path) < 2 || path[0] != '"' || path[len(path)-1] != '"' {
		return path
	}
	if unquoted, err := strconv.Unquote(path); err == nil {
		return unquoted
	}
	return strings.Trim(path, `"`)
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
