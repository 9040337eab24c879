// Package config loads cxxnav.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// DefaultFile is the config file looked up in the working directory when
// no path is given.
const DefaultFile = "cxxnav.toml"

type Config struct {
	Parser  Parser  `toml:"parser"`
	Store   Store   `toml:"store"`
	Sources Sources `toml:"sources"`
	Watch   Watch   `toml:"watch"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`
}

type Parser struct {
	// DefaultArgs are prepended to every parse. Empty means -x c++ -std=c++14.
	DefaultArgs []string `toml:"default_args"`
	// SystemIncludes are the ordered system include flags, for example
	// ["-isystem", "/usr/include/c++/12"].
	SystemIncludes []string `toml:"system_includes"`
	// Args are extra per-project arguments such as -I and -D flags.
	Args []string `toml:"args"`
	// WorkingDir anchors relative paths in Args. Empty means the
	// directory of each parsed file.
	WorkingDir string `toml:"working_dir"`
}

type Store struct {
	RootDir string `toml:"root_dir"`
}

type Sources struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Log struct {
	Level string `toml:"level"`
}

type Metrics struct {
	Address string `toml:"address"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validateLog(&cfg); err != nil {
		return nil, err
	}
	if err := validateSources(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when path is the
// default file name and it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultFile {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Store.RootDir) == "" {
		cfg.Store.RootDir = ".cxxnav"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}

func validateLog(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log.level must be one of: debug, info, warn, error")
}

func validateSources(cfg *Config) error {
	for _, p := range append(append([]string{}, cfg.Sources.Include...), cfg.Sources.Exclude...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("sources: invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 10*time.Millisecond || cfg.Watch.Debounce > time.Minute {
		return fmt.Errorf("watch.debounce must be between 10ms and 1m")
	}
	return nil
}

// SlogLevel maps log.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
