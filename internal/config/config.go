// Package config loads buildprof.toml, the per-project run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ManifestName is the configuration file buildprof looks for.
const ManifestName = "buildprof.toml"

// Config is the fully resolved run configuration.
type Config struct {
	// Jobs bounds the number of traces parsed concurrently. 0 means one
	// worker per CPU.
	Jobs int `toml:"jobs"`
	// TopN bounds ranked tool output. 0 keeps the built-in default.
	TopN int `toml:"top_n"`
	// TargetsFile points at a TOML file with explicit [[target]] blocks.
	// Empty means targets are derived from trace file paths.
	TargetsFile string `toml:"targets_file"`

	History History   `toml:"history"`
	Tools   Tools     `toml:"tools"`
	Shorten []Shorten `toml:"shorten"`
}

// History configures the on-disk run store.
type History struct {
	// Dir holds prior run records. Empty disables history entirely.
	Dir string `toml:"dir"`
	// Keep bounds the number of records retained after a run. 0 keeps all.
	Keep int `toml:"keep"`
	// MaxAgeDays drops records older than this after a run. 0 keeps all.
	MaxAgeDays int `toml:"max_age_days"`
	// CompareTo selects the baseline: a run ID, or empty for the latest
	// prior run.
	CompareTo string `toml:"compare_to"`
	// CompareTag selects the latest prior run carrying this tag. Ignored
	// when CompareTo is set.
	CompareTag string `toml:"compare_tag"`
	// Tag is stored on the current run's record.
	Tag string `toml:"tag"`
}

// Tools holds per-tool enable overrides keyed by tool ID.
type Tools struct {
	Enable  []string `toml:"enable"`
	Disable []string `toml:"disable"`
}

// Shorten is one path-shortening rule applied to report and trace output.
type Shorten struct {
	Prefix      string `toml:"prefix"`
	Replacement string `toml:"replacement"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		History: History{Dir: ".buildprof"},
	}
}

// MaxAge converts the retention age to a duration. Zero means unlimited.
func (h History) MaxAge() time.Duration {
	return time.Duration(h.MaxAgeDays) * 24 * time.Hour
}

// Overrides flattens the enable/disable lists into the override map the
// tool registry takes. Disable wins when an ID appears in both.
func (t Tools) Overrides() map[string]bool {
	if len(t.Enable) == 0 && len(t.Disable) == 0 {
		return nil
	}
	out := make(map[string]bool, len(t.Enable)+len(t.Disable))
	for _, id := range t.Enable {
		out[id] = true
	}
	for _, id := range t.Disable {
		out[id] = false
	}
	return out
}

// Load parses the manifest at path.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate(path string) error {
	if c.Jobs < 0 {
		return fmt.Errorf("%s: jobs must not be negative", path)
	}
	if c.TopN < 0 {
		return fmt.Errorf("%s: top_n must not be negative", path)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("%s: history.keep must not be negative", path)
	}
	if c.History.MaxAgeDays < 0 {
		return fmt.Errorf("%s: history.max_age_days must not be negative", path)
	}
	for _, s := range c.Shorten {
		if s.Prefix == "" {
			return fmt.Errorf("%s: shorten rule with empty prefix", path)
		}
	}
	return nil
}

// Find walks up from startDir to locate the nearest manifest.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// Resolve loads the nearest manifest above startDir, or the defaults when
// none exists.
func Resolve(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}
