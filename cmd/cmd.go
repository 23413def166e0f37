package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thiagokokada/gitpulse/internal/buildinfo"
	"github.com/thiagokokada/gitpulse/internal/config"
	"github.com/thiagokokada/gitpulse/internal/git"
	gitbackend "github.com/thiagokokada/gitpulse/internal/git/backend"
	"github.com/thiagokokada/gitpulse/internal/tui"
)

// startDashboard is replaced in tests.
var startDashboard = func(ctx context.Context, repoPath string, opts git.Options, cfg tui.RunConfig) error {
	svc, err := git.Open(repoPath, opts)
	if err != nil {
		return err
	}
	cfg.Limits = svc.Limits()
	return tui.Run(ctx, svc, cfg)
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout)
}

type settings struct {
	repoPath string
	logPath  string
	verbose  bool
	backend  gitbackend.Kind
	cfg      *config.Config
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("gitpulse", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the settings file (default: $XDG_CONFIG_HOME/gitpulse/config.toml)")
	mode := fs.String("mode", tui.ThemeAuto.String(), "color mode: auto, light, or dark")
	backend := fs.String("backend", string(gitbackend.KindCLI), "git backend: cli or native")
	interval := fs.Duration("interval", config.DefaultRefreshInterval, "periodic refresh interval")
	noWatch := fs.Bool("nowatch", false, "disable refresh on file system changes")
	noSyntax := fs.Bool("nosyntax", false, "disable syntax highlighting in the diff preview")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	logPath := fs.String("log", "", "write logs to this file")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, buildinfo.VersionWithTags())
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// Flags given on the command line win over the settings file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Theme = *mode
		case "backend":
			cfg.Backend = *backend
		case "interval":
			cfg.RefreshInterval = config.Duration(*interval)
		case "nowatch":
			cfg.Watch = !*noWatch
		case "nosyntax":
			cfg.Syntax = !*noSyntax
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	kind, err := gitbackend.ParseKind(cfg.Backend)
	if err != nil {
		return err
	}

	s := settings{
		repoPath: ".",
		logPath:  *logPath,
		verbose:  *verbose,
		backend:  kind,
		cfg:      cfg,
	}
	if remaining := fs.Args(); len(remaining) > 0 {
		s.repoPath = remaining[len(remaining)-1]
	}
	return s.start(ctx)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func (s settings) start(ctx context.Context) error {
	closeLog, err := setupLogging(s.logPath, s.verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("starting",
		slog.String("version", buildinfo.Version()),
		slog.String("repo", s.repoPath),
		slog.String("backend", string(s.backend)),
		slog.Duration("interval", s.cfg.Interval()),
	)
	start := time.Now()
	err = startDashboard(ctx, s.repoPath,
		git.Options{Backend: s.backend, Limits: s.cfg.Limits},
		tui.RunConfig{
			Interval:        s.cfg.Interval(),
			ThemePreference: tui.ThemePreferenceFromString(s.cfg.Theme),
			AutoRefresh:     s.cfg.Watch,
			SyntaxHighlight: s.cfg.Syntax,
			Limits:          s.cfg.Limits,
		},
	)
	slog.Info("stopped", slog.Duration("uptime", time.Since(start)), slog.Any("error", err))
	return err
}

// setupLogging points the default logger at path. The dashboard owns the
// terminal, so without a log file everything is discarded.
func setupLogging(path string, verbose bool) (func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() { _ = f.Close() }, nil
}
