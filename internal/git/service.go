package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/thiagokokada/gitpulse/internal/changes"
	gitbackend "github.com/thiagokokada/gitpulse/internal/git/backend"
)

var ErrEmptyCommitMessage = errors.New("commit message is empty")

// Options tune how a Service talks to the repository and how much detail
// its overviews carry.
type Options struct {
	Backend gitbackend.Kind
	Limits  changes.Limits
	Symbols *changes.SymbolRegistry
}

// Service turns backend reports into change snapshots and runs the
// dashboard's repository actions.
type Service struct {
	// mu serializes backend calls so a refresh never interleaves with a
	// stage, commit or push.
	mu sync.Mutex

	backend gitbackend.Backend
	symbols *changes.SymbolRegistry
	limits  changes.Limits
}

func Open(repoPath string, opts Options) (*Service, error) {
	b, err := gitbackend.Open(opts.Backend, repoPath)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(b, opts), nil
}

func NewWithBackend(b gitbackend.Backend, opts Options) *Service {
	symbols := opts.Symbols
	if symbols == nil {
		symbols = changes.NewSymbolRegistry()
	}
	return &Service{backend: b, symbols: symbols, limits: opts.Limits.Normalize()}
}

func (s *Service) RepoPath() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.RepoPath()
}

func (s *Service) Limits() changes.Limits {
	return s.limits
}

// Refresh produces a new snapshot. Without a status report the result is
// the empty snapshot together with the error. A failing numstat report
// only costs the line counts of tracked files.
func (s *Service) Refresh(ctx context.Context) (changes.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.backend.StatusReport(ctx)
	if err != nil {
		return changes.EmptySnapshot(), fmt.Errorf("read status: %w", err)
	}
	numstat, err := s.backend.NumstatReport(ctx)
	if err != nil {
		slog.Warn("numstat unavailable, line counts omitted", slog.Any("error", err))
		numstat = ""
	}
	snap := changes.BuildSnapshot(status, numstat, s.backend.ReadFile)
	slog.Debug("refresh",
		slog.String("branch", snap.Branch),
		slog.Int("files", len(snap.Files)),
		slog.Int("rows", len(snap.Rows)),
	)
	return snap, nil
}

// Overview summarizes row idx of snap. It reports false when idx is out of
// range.
func (s *Service) Overview(ctx context.Context, snap changes.Snapshot, idx int) (changes.Overview, bool) {
	row, ok := snap.Row(idx)
	if !ok {
		return changes.Overview{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := changes.NewAggregator(source{ctx: ctx, backend: s.backend}, s.symbols, s.limits)
	return agg.Row(row, snap.Files), true
}

// source binds a context to the backend for the duration of one overview.
type source struct {
	ctx     context.Context
	backend gitbackend.Backend
}

func (src source) FileDiff(path string) (string, error) {
	diff, err := src.backend.FileDiff(src.ctx, path)
	if err != nil {
		slog.Debug("file diff failed", slog.String("path", path), slog.Any("error", err))
	}
	return diff, err
}

func (src source) ReadFile(path string) ([]byte, error) {
	return src.backend.ReadFile(path)
}

// ToggleStage unstages a row that has staged changes and stages it
// otherwise. Folder rows apply to everything below them.
func (s *Service) ToggleStage(ctx context.Context, row changes.TreeRow) (string, error) {
	if strings.TrimSpace(row.Path) == "" {
		return "", fmt.Errorf("no item selected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := row.Path
	if row.Kind == changes.RowFolder {
		target += "/"
	}
	if row.Staged {
		if err := s.backend.Unstage(ctx, row.Path); err != nil {
			return "", err
		}
		return "✓ unstaged " + target, nil
	}
	if err := s.backend.Stage(ctx, row.Path); err != nil {
		return "", err
	}
	return "✓ staged " + target, nil
}

func (s *Service) Commit(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyCommitMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Commit(ctx, message)
}

func (s *Service) Push(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Push(ctx)
}
