package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCountdown(); err != nil {
		return err
	}
	if err := c.validateFormatter(); err != nil {
		return err
	}
	if err := c.validateBackground(); err != nil {
		return err
	}
	if err := c.validateFont(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCountdown() error {
	if _, err := time.LoadLocation(c.Countdown.Timezone); err != nil {
		return fmt.Errorf("countdown.timezone: %w", err)
	}
	if c.Countdown.Target != "" {
		if _, err := c.TargetTime(); err != nil {
			return fmt.Errorf("countdown.target: %w", err)
		}
	}
	if c.Countdown.Runtime < 0 {
		return errors.New("countdown.runtime must be zero or positive")
	}
	if c.Countdown.Runtime > MaxRuntime {
		return fmt.Errorf("countdown.runtime %d exceeds the maximum of %d", c.Countdown.Runtime, MaxRuntime)
	}
	switch c.Countdown.OutputFormat {
	case "gif", "apng":
	default:
		return fmt.Errorf("countdown.output_format: unsupported value %q (want gif or apng)", c.Countdown.OutputFormat)
	}
	return nil
}

func (c *Config) validateFormatter() error {
	hasToken := false
	for _, token := range []string{"{d}", "{h}", "{m}", "{s}"} {
		if strings.Contains(c.Formatter.Format, token) {
			hasToken = true
			break
		}
	}
	if !hasToken {
		return fmt.Errorf("formatter.format %q must contain at least one of {d} {h} {m} {s}", c.Formatter.Format)
	}
	for unit, width := range c.Formatter.Pads {
		switch unit {
		case "d", "h", "m", "s":
		default:
			return fmt.Errorf("formatter.pads: unknown unit %q", unit)
		}
		if width < 0 {
			return fmt.Errorf("formatter.pads.%s must be zero or positive", unit)
		}
	}
	return nil
}

func (c *Config) validateBackground() error {
	if c.Background.Path != "" {
		return nil
	}
	if c.Background.Width <= 0 || c.Background.Height <= 0 {
		return errors.New("background.width and background.height must be positive when background.path is unset")
	}
	return nil
}

func (c *Config) validateFont() error {
	if c.Font.Size <= 0 {
		return errors.New("font.size must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendSQLite, CacheBackendDisk:
		if strings.TrimSpace(c.Cache.Path) == "" {
			return fmt.Errorf("cache.path must be set for the %s backend", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want none, memory, sqlite, or disk)", c.Cache.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
