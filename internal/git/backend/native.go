package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// nativeGit implements Backend on top of go-git, rendering its results in
// the same text formats the git executable produces.
type nativeGit struct {
	path string
	repo *gitlib.Repository

	mu  sync.Mutex
	div divergenceCache
}

type divergenceCache struct {
	local    plumbing.Hash
	upstream plumbing.Hash
	ahead    int
	behind   int
}

func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &nativeGit{path: wt.Filesystem.Root(), repo: repo}, nil
}

func (n *nativeGit) RepoPath() string {
	return n.path
}

func (n *nativeGit) status() (gitlib.Status, []string, error) {
	wt, err := n.repo.Worktree()
	if err != nil {
		return nil, nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, nil, fmt.Errorf("worktree status: %w", err)
	}
	paths := slices.Sorted(maps.Keys(st))
	return st, paths, nil
}

func (n *nativeGit) StatusReport(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	st, paths, err := n.status()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(n.branchHeader())
	b.WriteByte('\n')
	for _, path := range paths {
		fs := st[path]
		if fs.Staging == gitlib.Unmodified && fs.Worktree == gitlib.Unmodified {
			continue
		}
		b.WriteByte(byte(fs.Staging))
		b.WriteByte(byte(fs.Worktree))
		b.WriteByte(' ')
		if fs.Staging == gitlib.Renamed && fs.Extra != "" {
			b.WriteString(quotePath(fs.Extra))
			b.WriteString(" -> ")
		}
		b.WriteString(quotePath(path))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func quotePath(path string) string {
	if strings.ContainsAny(path, "\"\\\t\n") {
		return strconv.Quote(path)
	}
	return path
}

// branchHeader renders the "## branch...upstream [ahead N, behind M]" line.
func (n *nativeGit) branchHeader() string {
	head, err := n.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		if ref, rerr := n.repo.Storer.Reference(plumbing.HEAD); rerr == nil && ref.Type() == plumbing.SymbolicReference {
			return "## No commits yet on " + ref.Target().Short()
		}
		return "## HEAD (no branch)"
	}
	if err != nil || !head.Name().IsBranch() {
		return "## HEAD (no branch)"
	}
	name := head.Name().Short()
	upstream, ok := n.upstreamOf(name)
	if !ok {
		return "## " + name
	}
	ref, err := n.repo.Reference(upstream, true)
	if err != nil {
		return fmt.Sprintf("## %s...%s [gone]", name, upstream.Short())
	}
	ahead, behind, err := n.divergence(head.Hash(), ref.Hash())
	if err != nil {
		slog.Debug("divergence failed", slog.String("branch", name), slog.Any("error", err))
		return fmt.Sprintf("## %s...%s", name, upstream.Short())
	}
	var counts []string
	if ahead > 0 {
		counts = append(counts, fmt.Sprintf("ahead %d", ahead))
	}
	if behind > 0 {
		counts = append(counts, fmt.Sprintf("behind %d", behind))
	}
	header := fmt.Sprintf("## %s...%s", name, upstream.Short())
	if len(counts) > 0 {
		header += " [" + strings.Join(counts, ", ") + "]"
	}
	return header
}

func (n *nativeGit) upstreamOf(branch string) (plumbing.ReferenceName, bool) {
	cfg, err := n.repo.Config()
	if err != nil {
		return "", false
	}
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", false
	}
	if b.Remote == "." {
		return b.Merge, true
	}
	return plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short()), true
}

// divergence counts commits reachable from only one side. Results are
// cached per pair of tips since they rarely move between refreshes.
func (n *nativeGit) divergence(local, upstream plumbing.Hash) (int, int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.div.local == local && n.div.upstream == upstream {
		return n.div.ahead, n.div.behind, nil
	}
	mine, err := n.ancestry(local)
	if err != nil {
		return 0, 0, err
	}
	theirs, err := n.ancestry(upstream)
	if err != nil {
		return 0, 0, err
	}
	ahead, behind := 0, 0
	for h := range mine {
		if _, ok := theirs[h]; !ok {
			ahead++
		}
	}
	for h := range theirs {
		if _, ok := mine[h]; !ok {
			behind++
		}
	}
	n.div = divergenceCache{local: local, upstream: upstream, ahead: ahead, behind: behind}
	return ahead, behind, nil
}

func (n *nativeGit) ancestry(from plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	commit, err := n.repo.CommitObject(from)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", from, err)
	}
	seen := map[plumbing.Hash]struct{}{}
	iter := object.NewCommitPreorderIter(commit, nil, nil)
	defer iter.Close()
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = struct{}{}
		return nil
	})
	return seen, err
}

func (n *nativeGit) headTree() (*object.Tree, error) {
	head, err := n.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := n.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	return commit.Tree()
}

func (n *nativeGit) NumstatReport(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	st, paths, err := n.status()
	if err != nil {
		return "", err
	}
	tree, err := n.headTree()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, path := range paths {
		fs := st[path]
		if fs.Worktree == gitlib.Untracked {
			continue
		}
		if fs.Staging == gitlib.Unmodified && fs.Worktree == gitlib.Unmodified {
			continue
		}
		change, err := n.loadChange(tree, path)
		if err != nil {
			return "", err
		}
		if change.from == nil && change.to == nil {
			continue
		}
		line, err := numstatLine(change)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
	}
	return b.String(), nil
}

func (n *nativeGit) FileDiff(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path not specified")
	}
	tree, err := n.headTree()
	if err != nil {
		return "", err
	}
	change, err := n.loadChange(tree, path)
	if err != nil {
		return "", err
	}
	if change.from == nil && change.to == nil {
		return "", nil
	}
	return renderZeroContext(change)
}

func (n *nativeGit) loadChange(tree *object.Tree, path string) (localChange, error) {
	from, err := fileFromTree(tree, path)
	if err != nil {
		return localChange{}, err
	}
	to, err := fileFromDisk(n.path, path)
	if err != nil {
		return localChange{}, err
	}
	return localChange{path: path, from: from, to: to}, nil
}

func (n *nativeGit) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(n.path, filepath.FromSlash(path)))
}

func (n *nativeGit) Stage(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wt, err := n.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := os.Lstat(filepath.Join(n.path, filepath.FromSlash(path))); errors.Is(err, os.ErrNotExist) {
		if _, err := wt.Remove(path); err != nil {
			return fmt.Errorf("stage removal of %s: %w", path, err)
		}
		return nil
	}
	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	return nil
}

func (n *nativeGit) Unstage(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	files, err := n.stagedUnder(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	if _, err := n.repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return n.dropFromIndex(files)
	}
	wt, err := n.repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Restore(&gitlib.RestoreOptions{Staged: true, Files: files}); err != nil {
		return fmt.Errorf("unstage %s: %w", path, err)
	}
	return nil
}

// stagedUnder lists the staged paths equal to path or below it when path
// names a folder.
func (n *nativeGit) stagedUnder(path string) ([]string, error) {
	st, paths, err := n.status()
	if err != nil {
		return nil, err
	}
	path = strings.TrimSuffix(path, "/")
	var files []string
	for _, p := range paths {
		if p != path && !strings.HasPrefix(p, path+"/") {
			continue
		}
		if code := st[p].Staging; code != gitlib.Unmodified && code != gitlib.Untracked {
			files = append(files, p)
		}
	}
	return files, nil
}

// dropFromIndex unstages paths while HEAD is unborn, where there is
// nothing to restore from.
func (n *nativeGit) dropFromIndex(files []string) error {
	idx, err := n.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	for _, f := range files {
		if _, err := idx.Remove(f); err != nil {
			return fmt.Errorf("unstage %s: %w", f, err)
		}
	}
	return n.repo.Storer.SetIndex(idx)
}

func (n *nativeGit) Commit(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit message is empty")
	}
	wt, err := n.repo.Worktree()
	if err != nil {
		return "", err
	}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	branch := "HEAD"
	if head, err := n.repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return fmt.Sprintf("[%s %s] %s", branch, hash.String()[:7], subject), nil
}

func (n *nativeGit) Push(ctx context.Context) (string, error) {
	head, err := n.repo.Head()
	if err != nil {
		return "", fmt.Errorf("push: resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("push: HEAD is detached")
	}
	name := head.Name().Short()
	cfg, err := n.repo.Config()
	if err != nil {
		return "", fmt.Errorf("push: read config: %w", err)
	}
	remote, merge := "", head.Name()
	setUpstream := false
	if b, ok := cfg.Branches[name]; ok && b.Remote != "" && b.Remote != "." && b.Merge != "" {
		remote, merge = b.Remote, b.Merge
	} else {
		remote = preferredRemote(slices.Sorted(maps.Keys(cfg.Remotes)))
		setUpstream = true
	}
	spec := config.RefSpec(head.Name().String() + ":" + merge.String())
	err = n.repo.PushContext(ctx, &gitlib.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{spec},
	})
	if errors.Is(err, gitlib.NoErrAlreadyUpToDate) {
		return "Everything up-to-date", nil
	}
	if err != nil {
		return "", fmt.Errorf("push %s: %w", remote, err)
	}
	if !setUpstream {
		return fmt.Sprintf("✓ pushed %s to %s", name, remote), nil
	}
	if cfg.Branches == nil {
		cfg.Branches = map[string]*config.Branch{}
	}
	cfg.Branches[name] = &config.Branch{Name: name, Remote: remote, Merge: head.Name()}
	if err := n.repo.SetConfig(cfg); err != nil {
		return "", fmt.Errorf("push: set upstream: %w", err)
	}
	return fmt.Sprintf("✓ pushed %s to %s and set upstream", name, remote), nil
}
