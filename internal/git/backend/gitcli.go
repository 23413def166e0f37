package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// gitCLI runs the git binary against one worktree root.
type gitCLI struct {
	path string
}

func OpenCLI(repoPath string) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	root, err := (&gitCLI{path: abs}).git(context.Background(), "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("open repository: git rev-parse returned empty root")
	}
	return &gitCLI{path: root}, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.path
}

// git runs a git subcommand and returns its stdout.
func (g *gitCLI) git(ctx context.Context, args ...string) (string, error) {
	return g.exec(ctx, false, args)
}

// gitLenient is git for commands that use exit status 1 as an answer
// rather than a failure, like "git diff" reporting differences.
func (g *gitCLI) gitLenient(ctx context.Context, args ...string) (string, error) {
	return g.exec(ctx, true, args)
}

func (g *gitCLI) exec(ctx context.Context, allowExit1 bool, args []string) (string, error) {
	if g == nil || g.path == "" {
		return "", errors.New("repository root not set")
	}
	desc := "git"
	if len(args) > 0 {
		desc += " " + args[0]
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", g.path}, args...)...)
	// Polling status must not take index.lock away from the user's own git.
	cmd.Env = append(os.Environ(), "GIT_OPTIONAL_LOCKS=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("run git", slog.Any("args", args))

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0:
	case stderr.Len() > 0:
		return "", fmt.Errorf("%s: %w: %s", desc, err, strings.TrimSpace(stderr.String()))
	default:
		return "", fmt.Errorf("%s: %w", desc, err)
	}
	return stdout.String(), nil
}
