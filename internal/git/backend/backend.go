package backend

import (
	"context"
	"fmt"
	"strings"
)

// Backend provides the raw reports the change engine consumes and the
// actions the dashboard can trigger.
//
// The default implementation shells out to the git executable; the native
// one is pure Go. Both produce the same text formats so callers never need
// to know which one is active.
type Backend interface {
	RepoPath() string

	// StatusReport returns `git status --porcelain=1 -b -uall` output.
	StatusReport(ctx context.Context) (string, error)
	// NumstatReport returns `git diff --numstat HEAD` output.
	NumstatReport(ctx context.Context) (string, error)
	// FileDiff returns the zero-context diff of one path against HEAD.
	FileDiff(ctx context.Context, path string) (string, error)
	// ReadFile returns the worktree content of a repository-relative path.
	ReadFile(path string) ([]byte, error)

	Stage(ctx context.Context, path string) error
	Unstage(ctx context.Context, path string) error
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context) (string, error)
}

type Kind string

const (
	KindCLI    Kind = "cli"
	KindNative Kind = "native"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindCLI:
		return KindCLI, nil
	case KindNative:
		return KindNative, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want %s or %s)", raw, KindCLI, KindNative)
	}
}

// Open returns the backend of the given kind rooted at the repository that
// contains repoPath.
func Open(kind Kind, repoPath string) (Backend, error) {
	switch kind {
	case KindNative:
		return OpenNative(repoPath)
	case KindCLI, "":
		return OpenCLI(repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// emptyTree is the id of the empty tree object, used as the diff base while
// HEAD is unborn.
const emptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func needsUpstream(msg string) bool {
	return strings.Contains(msg, "has no upstream branch") ||
		strings.Contains(msg, "--set-upstream") ||
		strings.Contains(msg, "set upstream")
}

// preferredRemote picks "origin" when present, else the first remote.
func preferredRemote(remotes []string) string {
	var first string
	for _, r := range remotes {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if r == "origin" {
			return r
		}
		if first == "" {
			first = r
		}
	}
	if first == "" {
		return "origin"
	}
	return first
}

// summarizeOutput keeps the first non-empty line of a command's output, or
// fallback when there is none.
func summarizeOutput(out, fallback string) string {
	for line := range strings.SplitSeq(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return fallback
}
