package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCountdown()
	c.normalizeFormatter()
	if err := c.normalizeBackground(); err != nil {
		return err
	}
	if err := c.normalizeFont(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCountdown() {
	c.Countdown.Target = strings.TrimSpace(c.Countdown.Target)
	if c.Countdown.Target == "" {
		if value, ok := os.LookupEnv("COUNTDOWN_TARGET"); ok {
			c.Countdown.Target = strings.TrimSpace(value)
		}
	}
	c.Countdown.Timezone = strings.TrimSpace(c.Countdown.Timezone)
	if c.Countdown.Timezone == "" {
		c.Countdown.Timezone = defaultTimezone
	}
	c.Countdown.OutputFormat = strings.ToLower(strings.TrimSpace(c.Countdown.OutputFormat))
	if c.Countdown.OutputFormat == "" {
		c.Countdown.OutputFormat = defaultOutputFormat
	}
	if c.Countdown.Workers <= 0 {
		c.Countdown.Workers = defaultWorkers
	}
	if c.Countdown.FrameDelay <= 0 {
		c.Countdown.FrameDelay = defaultFrameDelay
	}
}

func (c *Config) normalizeFormatter() {
	if strings.TrimSpace(c.Formatter.Format) == "" {
		c.Formatter.Format = defaultFormat
	}
	if len(c.Formatter.Pads) == 0 {
		return
	}
	pads := make(map[string]int, len(c.Formatter.Pads))
	for unit, width := range c.Formatter.Pads {
		pads[strings.ToLower(strings.TrimSpace(unit))] = width
	}
	c.Formatter.Pads = pads
}

func (c *Config) normalizeBackground() error {
	var err error
	if c.Background.Path, err = expandPath(strings.TrimSpace(c.Background.Path)); err != nil {
		return fmt.Errorf("background.path: %w", err)
	}
	c.Background.Color = strings.ToLower(strings.TrimSpace(c.Background.Color))
	if c.Background.Color == "" {
		c.Background.Color = defaultBgColor
	}
	return nil
}

func (c *Config) normalizeFont() error {
	var err error
	if c.Font.Path, err = expandPath(strings.TrimSpace(c.Font.Path)); err != nil {
		return fmt.Errorf("font.path: %w", err)
	}
	c.Font.Color = strings.ToLower(strings.TrimSpace(c.Font.Color))
	if c.Font.Color == "" {
		c.Font.Color = defaultFontColor
	}
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultCacheEntries
	}
	path := strings.TrimSpace(c.Cache.Path)
	if path == "" {
		switch c.Cache.Backend {
		case CacheBackendSQLite:
			path = filepath.Join(c.Paths.CacheDir, defaultCacheFileName)
		case CacheBackendDisk:
			path = filepath.Join(c.Paths.CacheDir, "frames")
		}
	}
	var err error
	if c.Cache.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
