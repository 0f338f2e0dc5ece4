// Package config loads duplines.toml, found by walking up from the working
// directory. Command-line flags override whatever it sets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Find.
const FileName = "duplines.toml"

// Config is the decoded configuration. Path is empty when no file was found.
type Config struct {
	Path    string        `toml:"-"`
	Dedup   DedupConfig   `toml:"dedup"`
	Input   InputConfig   `toml:"input"`
	Lock    LockConfig    `toml:"lock"`
	History HistoryConfig `toml:"history"`
	Report  ReportConfig  `toml:"report"`
}

// DedupConfig selects the marker strategy and the trimming scan.
type DedupConfig struct {
	Strategy string `toml:"strategy"`
	Trim     bool   `toml:"trim"`
}

// InputConfig bounds the in-memory input.
type InputConfig struct {
	MaxBytes int64 `toml:"max_bytes"`
}

// LockConfig holds the lock wait as a Go duration string, e.g. "5s".
type LockConfig struct {
	Timeout string `toml:"timeout"`
}

// HistoryConfig points at the SQLite run ledger. A relative path is resolved
// against the directory holding the config file.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// ReportConfig picks the default report format: toon, pretty or json.
type ReportConfig struct {
	Format string `toml:"format"`
}

// LockTimeout parses Lock.Timeout. It returns 0 when unset.
func (c Config) LockTimeout() (time.Duration, error) {
	if c.Lock.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Lock.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid lock.timeout %q: %w", c.Path, c.Lock.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: lock.timeout must not be negative", c.Path)
	}
	return d, nil
}

// HistoryPath returns History.Path resolved against the config file's
// directory, or "" when unset.
func (c Config) HistoryPath() string {
	p := c.History.Path
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// Find walks up from startDir looking for duplines.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the config file at path. Unknown keys are an error.
func Load(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Input.MaxBytes < 0 {
		return Config{}, fmt.Errorf("%s: input.max_bytes must not be negative", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Discover loads the nearest duplines.toml above startDir. It returns a zero
// Config when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Config{}, err
	}
	return Load(path)
}
