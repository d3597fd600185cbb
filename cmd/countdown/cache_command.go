package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/framecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the frame cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show frame cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			maint, warn, closeFn, err := cacheMaintainer(cmd, ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || maint == nil {
				return err
			}
			defer closeFn()

			stats, err := maint.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCacheStats(stats))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stats as JSON")
	return cmd
}

func renderCacheStats(stats framecache.Stats) string {
	rows := [][]string{
		{"Backend", stats.Backend},
	}
	if stats.Location != "" {
		rows = append(rows, []string{"Location", stats.Location})
	}
	rows = append(rows,
		[]string{"Frames", strconv.Itoa(stats.Entries)},
		[]string{"Expired", strconv.Itoa(stats.Expired)},
		[]string{"Size", humanize.IBytes(uint64(max(0, stats.TotalBytes)))},
	)
	if stats.Capacity > 0 {
		rows = append(rows, []string{"Capacity", strconv.Itoa(stats.Capacity) + " frames"})
	}
	if stats.TotalFSBytes > 0 {
		rows = append(rows, []string{"Disk free", fmt.Sprintf("%s of %s", humanize.IBytes(stats.FreeBytes), humanize.IBytes(stats.TotalFSBytes))})
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired frames from the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			maint, warn, closeFn, err := cacheMaintainer(cmd, ctx)
			if warn != "" {
				fmt.Fprintln(cmd.OutOrStdout(), warn)
			}
			if err != nil || maint == nil {
				return err
			}
			defer closeFn()

			before, err := maint.Stats(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := maint.Prune(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			after, err := maint.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No expired frames to prune")
				return nil
			}
			freed := before.TotalBytes - after.TotalBytes
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired frames, freed %s (%d frames remain)\n",
				removed, humanize.IBytes(uint64(max(0, freed))), after.Entries)
			return nil
		},
	}
}

// cacheMaintainer opens the configured persistent store. Backends without
// persistent state return a message instead of a store.
func cacheMaintainer(cmd *cobra.Command, ctx *commandContext) (framecache.Maintainer, string, func() error, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, "", nil, err
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return nil, "Frame cache is disabled (set cache.backend in config.toml)", nil, nil
	case config.CacheBackendMemory:
		return nil, "Memory frame cache lives only for one render; nothing to inspect", nil, nil
	}
	store, err := openFrameStore(cmd.Context(), cfg)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open frame cache: %w", err)
	}
	maint, ok := store.store.(framecache.Maintainer)
	if !ok {
		_ = store.Close()
		return nil, fmt.Sprintf("Cache backend %q does not support maintenance", cfg.Cache.Backend), nil, nil
	}
	return maint, "", store.Close, nil
}
