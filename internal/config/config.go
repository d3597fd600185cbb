package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// Countdown describes the countdown window and output.
type Countdown struct {
	// Target is the moment the countdown reaches zero. RFC3339 values carry
	// their own offset; bare "2006-01-02 15:04:05" values are read in Timezone.
	Target       string `toml:"target"`
	Timezone     string `toml:"timezone"`
	Runtime      int    `toml:"runtime"`
	DefaultText  string `toml:"default_text"`
	AnchorX      int    `toml:"anchor_x"`
	AnchorY      int    `toml:"anchor_y"`
	OutputFormat string `toml:"output_format"`
	Workers      int    `toml:"workers"`
	// FrameDelay is the per-frame display time in centiseconds.
	FrameDelay int `toml:"frame_delay"`
}

// Formatter contains the display format for remaining time.
type Formatter struct {
	Format string         `toml:"format"`
	Pads   map[string]int `toml:"pads"`
}

// Background describes the canvas every frame is drawn on. When Path is set the
// image file wins over the solid-color dimensions.
type Background struct {
	Path   string `toml:"path"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Color  string `toml:"color"`
}

// Font describes the text face. An empty Path selects the bundled Go Regular face.
type Font struct {
	Path  string  `toml:"path"`
	Size  float64 `toml:"size"`
	Color string  `toml:"color"`
}

// Cache contains configuration for the frame cache.
type Cache struct {
	Backend    string `toml:"backend"` // none, memory, sqlite, disk
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for countdown.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Countdown: target time, runtime window, anchor, output format
//   - Formatter: remaining-time display format and zero padding
//   - Background: image file or solid canvas
//   - Font: text face, size, and color
//   - Cache: frame cache backend selection
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Countdown  Countdown  `toml:"countdown"`
	Formatter  Formatter  `toml:"formatter"`
	Background Background `toml:"background"`
	Font       Font       `toml:"font"`
	Cache      Cache      `toml:"cache"`
	Logging    Logging    `toml:"logging"`
}

// Cache backends.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendDisk   = "disk"
)

const targetLocalLayout = "2006-01-02 15:04:05"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/countdown/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("countdown.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the selected cache backend writes to.
func (c *Config) EnsureDirectories() error {
	if c.Paths.LogDir != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
		}
	}
	switch c.Cache.Backend {
	case CacheBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(c.Cache.Path), 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", filepath.Dir(c.Cache.Path), err)
		}
	case CacheBackendDisk:
		if err := os.MkdirAll(c.Cache.Path, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Cache.Path, err)
		}
	}
	return nil
}

// TargetTime parses Countdown.Target in the configured timezone.
func (c *Config) TargetTime() (time.Time, error) {
	return ParseTime(c.Countdown.Target, c.Countdown.Timezone)
}

// ParseTime accepts RFC3339 or "2006-01-02 15:04:05" values. Bare values are
// interpreted in the named IANA zone; RFC3339 values keep their offset but are
// moved into the zone so the zone name is stable.
func ParseTime(value, zone string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("time value is empty")
	}
	loc, err := time.LoadLocation(strings.TrimSpace(zone))
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(targetLocalLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: expected RFC3339 or %q", value, targetLocalLayout)
	}
	return t, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
