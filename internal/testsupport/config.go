package testsupport

import (
	"path/filepath"
	"testing"

	"countdown/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Logging goes nowhere and caching is disabled unless an option enables it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Cache.Backend = config.CacheBackendNone
	cfgVal.Countdown.Target = "2030-01-01T00:00:00Z"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCacheBackend selects a cache backend. Persistent backends get a path
// inside the test's temp directory.
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
		switch backend {
		case config.CacheBackendSQLite:
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "cache", "frames.db")
		case config.CacheBackendDisk:
			b.cfg.Cache.Path = filepath.Join(b.baseDir, "cache", "frames")
		}
	}
}

// WithTarget overrides the countdown target.
func WithTarget(target string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Countdown.Target = target
	}
}

// WithBackgroundImage writes a solid PNG background and points the config at it.
func WithBackgroundImage(width, height int) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "background.png")
		WriteBackground(b.t, path, width, height)
		b.cfg.Background.Path = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.CacheDir)
}
