package preflight

import (
	"context"
	"path/filepath"
	"time"

	"countdown/internal/config"
)

// minCacheFreeBytes is the free space below which the cache check fails.
const minCacheFreeBytes = 64 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, now time.Time) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckTarget(cfg, now))

	if cfg.Background.Path != "" {
		results = append(results, CheckImageFile("Background image", cfg.Background.Path))
	}
	if cfg.Font.Path != "" {
		results = append(results, CheckFontFile("Font file", cfg.Font.Path))
	}

	if dir := cacheDir(cfg); dir != "" {
		results = append(results, CheckDirectoryAccess("Cache directory", dir))
		results = append(results, CheckFreeSpace(ctx, "Cache free space", dir, minCacheFreeBytes))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// cacheDir returns the directory a persistent cache backend writes into.
func cacheDir(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.CacheBackendSQLite:
		return filepath.Dir(cfg.Cache.Path)
	case config.CacheBackendDisk:
		return cfg.Cache.Path
	default:
		return ""
	}
}
