package git

import (
	"context"
	"errors"
)

type fakeBackend struct {
	repoPath string

	statusReportFunc  func() (string, error)
	numstatReportFunc func() (string, error)
	fileDiffFunc      func(path string) (string, error)
	readFileFunc      func(path string) ([]byte, error)
	stageFunc         func(path string) error
	unstageFunc       func(path string) error
	commitFunc        func(message string) (string, error)
	pushFunc          func() (string, error)

	lastStaged   string
	lastUnstaged string
	lastMessage  string
	diffCalls    []string
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) StatusReport(context.Context) (string, error) {
	if f.statusReportFunc != nil {
		return f.statusReportFunc()
	}
	return "", errors.New("unexpected StatusReport call")
}

func (f *fakeBackend) NumstatReport(context.Context) (string, error) {
	if f.numstatReportFunc != nil {
		return f.numstatReportFunc()
	}
	return "", errors.New("unexpected NumstatReport call")
}

func (f *fakeBackend) FileDiff(_ context.Context, path string) (string, error) {
	f.diffCalls = append(f.diffCalls, path)
	if f.fileDiffFunc != nil {
		return f.fileDiffFunc(path)
	}
	return "", errors.New("unexpected FileDiff call")
}

func (f *fakeBackend) ReadFile(path string) ([]byte, error) {
	if f.readFileFunc != nil {
		return f.readFileFunc(path)
	}
	return nil, errors.New("unexpected ReadFile call")
}

func (f *fakeBackend) Stage(_ context.Context, path string) error {
	f.lastStaged = path
	if f.stageFunc != nil {
		return f.stageFunc(path)
	}
	return errors.New("unexpected Stage call")
}

func (f *fakeBackend) Unstage(_ context.Context, path string) error {
	f.lastUnstaged = path
	if f.unstageFunc != nil {
		return f.unstageFunc(path)
	}
	return errors.New("unexpected Unstage call")
}

func (f *fakeBackend) Commit(_ context.Context, message string) (string, error) {
	f.lastMessage = message
	if f.commitFunc != nil {
		return f.commitFunc(message)
	}
	return "", errors.New("unexpected Commit call")
}

func (f *fakeBackend) Push(context.Context) (string, error) {
	if f.pushFunc != nil {
		return f.pushFunc()
	}
	return "", errors.New("unexpected Push call")
}
