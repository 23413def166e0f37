package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

func (g *gitCLI) StatusReport(ctx context.Context) (string, error) {
	return g.git(ctx, "status", "--porcelain=1", "-b", "-uall")
}

func (g *gitCLI) NumstatReport(ctx context.Context) (string, error) {
	base, err := g.diffBase(ctx)
	if err != nil {
		return "", err
	}
	return g.gitLenient(ctx, "diff", "--no-color", "--numstat", base)
}

func (g *gitCLI) FileDiff(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path not specified")
	}
	base, err := g.diffBase(ctx)
	if err != nil {
		return "", err
	}
	return g.gitLenient(ctx, "diff", "--no-color", "--unified=0", base, "--", path)
}

// diffBase returns HEAD, or the empty tree while HEAD is unborn.
func (g *gitCLI) diffBase(ctx context.Context) (string, error) {
	out, err := g.gitLenient(ctx, "rev-parse", "-q", "--verify", "HEAD")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return emptyTree, nil
	}
	return "HEAD", nil
}

func (g *gitCLI) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(g.path, filepath.FromSlash(path)))
}

func (g *gitCLI) Stage(ctx context.Context, path string) error {
	_, err := g.git(ctx, "add", "--", path)
	return err
}

func (g *gitCLI) Unstage(ctx context.Context, path string) error {
	base, err := g.diffBase(ctx)
	if err != nil {
		return err
	}
	if base == emptyTree {
		_, err = g.git(ctx, "rm", "-r", "-q", "--cached", "--", path)
		return err
	}
	_, err = g.git(ctx, "restore", "--staged", "--", path)
	return err
}

func (g *gitCLI) Commit(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit message is empty")
	}
	out, err := g.git(ctx, "commit", "-m", message)
	if err != nil {
		return "", err
	}
	return summarizeOutput(out, "✓ git commit"), nil
}

// Push pushes the current branch. A branch without upstream is pushed to the
// preferred remote with -u so later pushes work without arguments.
func (g *gitCLI) Push(ctx context.Context) (string, error) {
	out, err := g.git(ctx, "push")
	if err == nil {
		return summarizeOutput(out, "✓ git push"), nil
	}
	if !needsUpstream(err.Error()) {
		return "", err
	}
	remotes, rerr := g.git(ctx, "remote")
	if rerr != nil {
		return "", rerr
	}
	remote := preferredRemote(strings.Split(remotes, "\n"))
	slog.Debug("push without upstream, retrying with -u", slog.String("remote", remote))
	out, err = g.git(ctx, "push", "-u", remote, "HEAD")
	if err != nil {
		return "", err
	}
	return summarizeOutput(out, fmt.Sprintf("✓ git push -u %s HEAD", remote)), nil
}
