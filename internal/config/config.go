// Package config loads the optional gitpulse.toml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/thiagokokada/gitpulse/internal/changes"
)

const (
	appName  = "gitpulse"
	fileName = "config.toml"

	DefaultRefreshInterval = 700 * time.Millisecond
	// MinRefreshInterval keeps the periodic refresh from spawning git
	// processes faster than they finish.
	MinRefreshInterval = 100 * time.Millisecond
)

type Config struct {
	Theme           string         `toml:"theme"`
	Backend         string         `toml:"backend"`
	RefreshInterval Duration       `toml:"refresh_interval"`
	Watch           bool           `toml:"watch"`
	Syntax          bool           `toml:"syntax"`
	Limits          changes.Limits `toml:"limits"`
}

// Duration reads TOML strings such as "700ms" or "2s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Default() *Config {
	return &Config{
		Theme:           "auto",
		Backend:         "cli",
		RefreshInterval: Duration(DefaultRefreshInterval),
		Watch:           true,
		Syntax:          true,
		Limits:          changes.DefaultLimits(),
	}
}

// Path returns the settings file location:
// $XDG_CONFIG_HOME/gitpulse/config.toml, or ~/.config/gitpulse/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the settings file from its standard location. A missing file
// or an unknown home directory yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// LoadFromFile reads path on top of the defaults, so keys left out of the
// file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse config file %s: %s", path, strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("parse config file %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.Limits = cfg.Limits.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case "auto", "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("theme %q: want auto, light or dark", c.Theme))
	}
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "cli", "native":
	default:
		errs = append(errs, fmt.Errorf("backend %q: want cli or native", c.Backend))
	}
	if time.Duration(c.RefreshInterval) < MinRefreshInterval {
		errs = append(errs, fmt.Errorf("refresh_interval %s: must be at least %s",
			time.Duration(c.RefreshInterval), MinRefreshInterval))
	}
	return errors.Join(errs...)
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval)
}
