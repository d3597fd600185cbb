package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/framecache"
	"countdown/internal/framecache/diskstore"
	"countdown/internal/framecache/memstore"
	"countdown/internal/framecache/sqlitestore"
	"countdown/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// frameStore is an opened cache backend and the function that releases it.
type frameStore struct {
	store framecache.Store
	close func() error
}

func (s frameStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openFrameStore opens the configured cache backend. The "none" backend
// yields a nil store, which disables caching.
func openFrameStore(ctx context.Context, cfg *config.Config) (frameStore, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return frameStore{}, nil
	case config.CacheBackendMemory:
		store, err := memstore.New(cfg.Cache.MaxEntries)
		if err != nil {
			return frameStore{}, err
		}
		return frameStore{store: store}, nil
	case config.CacheBackendSQLite:
		store, err := sqlitestore.Open(ctx, cfg.Cache.Path)
		if err != nil {
			return frameStore{}, err
		}
		return frameStore{store: store, close: store.Close}, nil
	case config.CacheBackendDisk:
		store, err := diskstore.Open(cfg.Cache.Path)
		if err != nil {
			return frameStore{}, err
		}
		return frameStore{store: store}, nil
	default:
		return frameStore{}, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
