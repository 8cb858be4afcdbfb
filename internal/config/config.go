// Package config loads and validates the optional .idleguard YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/deixis/idleguard"
	"github.com/deixis/idleguard/internal/shell"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up from the workspace upward.
const FileName = ".idleguard"

// SchemaVersion is the only config file version understood. Zero means unset.
const SchemaVersion = 1

// maxTimeoutMillis is the largest millisecond count a time.Duration can hold.
const maxTimeoutMillis = math.MaxInt64 / int64(time.Millisecond)

// Default values for runner configuration.
const (
	DefaultIdleTimeout = 10 * time.Minute
	DefaultWaitDelay   = 5 * time.Second
	DefaultMaxOutput   = 0 // unlimited
)

// Config holds the parsed .idleguard configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int    `yaml:"version"`
	Requires       string `yaml:"requires"`          // semver constraint on the idleguard version, e.g. ">= 0.3"
	RawShell       string `yaml:"shell"`             // default shell when the input is empty
	RawIdleTimeout string `yaml:"no_output_timeout"` // e.g. "10m", or milliseconds
	RawMaxOutput   int    `yaml:"max_output"`        // bytes recorded per stream
	RawWaitDelay   string `yaml:"wait_delay"`        // e.g. "5s"
}

// Shell returns the configured default shell or bash.
func (c *Config) Shell() string {
	if c.RawShell != "" {
		return c.RawShell
	}
	return shell.Default
}

// IdleTimeout returns the configured idle timeout or the default.
// An explicit zero disables the timeout.
func (c *Config) IdleTimeout() time.Duration {
	if c.RawIdleTimeout != "" {
		d, err := ParseTimeout(c.RawIdleTimeout)
		if err == nil {
			return d
		}
	}
	return DefaultIdleTimeout
}

// MaxOutputBytes returns the configured per-stream recording cap.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// WaitDelay returns how long to wait for output streams to close once
// the shell has exited.
func (c *Config) WaitDelay() time.Duration {
	if c.RawWaitDelay != "" {
		d, err := time.ParseDuration(c.RawWaitDelay)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultWaitDelay
}

// Validate checks values that cannot fall back to a default.
func (c *Config) Validate() error {
	if c.Version != 0 && c.Version != SchemaVersion {
		return fmt.Errorf("unsupported config version %d; want %d", c.Version, SchemaVersion)
	}
	if c.RawShell != "" {
		if _, err := shell.Resolve(c.RawShell); err != nil {
			return err
		}
	}
	if c.RawIdleTimeout != "" {
		if _, err := ParseTimeout(c.RawIdleTimeout); err != nil {
			return err
		}
	}
	if c.Requires != "" {
		return checkVersion(c.Requires, idleguard.Version)
	}
	return nil
}

// ParseTimeout parses an idle timeout. A bare integer is a number of
// milliseconds; anything else must be a Go duration such as "90s".
// Zero disables the timeout.
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty timeout")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("timeout %q must not be negative", s)
		}
		if ms > maxTimeoutMillis {
			return 0, fmt.Errorf("timeout %q is too large; at most %d milliseconds", s, maxTimeoutMillis)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: want milliseconds or a duration like 30s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout %q must not be negative", s)
	}
	return d, nil
}

func checkVersion(constraint, version string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("parsing requires %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parsing version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("idleguard %s does not satisfy requires %q", version, constraint)
	}
	return nil
}

// LoadResult holds the parsed config and where it was found.
type LoadResult struct {
	Config *Config
	Path   string // empty when no file was found
}

// Load reads the .idleguard file from workspace or the nearest parent
// directory that has one. If no file exists, a default Config is returned.
func Load(workspace string) (*LoadResult, error) {
	path, err := findConfig(workspace)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &LoadResult{Config: &Config{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

// findConfig walks upward from dir looking for FileName.
func findConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
