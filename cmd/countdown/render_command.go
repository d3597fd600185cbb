package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"countdown/internal/config"
	"countdown/internal/container"
	"countdown/internal/countdown"
	"countdown/internal/fileutil"
	"countdown/internal/logging"
	"countdown/internal/preflight"
)

type renderOptions struct {
	target      string
	now         string
	runtime     int
	defaultText string
	anchorX     int
	anchorY     int
	format      string
	workers     int
	noCache     bool
	output      string
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the countdown animation",
		Long: "Render one frame per remaining second, from now toward the target, and write\n" +
			"the animation as GIF or APNG. Use -o - to write to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			applyRenderFlags(cmd, cfg, &opts)

			now := time.Now()
			if strings.TrimSpace(opts.now) != "" {
				now, err = config.ParseTime(opts.now, cfg.Countdown.Timezone)
				if err != nil {
					return fmt.Errorf("--now: %w", err)
				}
			}
			if strings.TrimSpace(cfg.Countdown.Target) == "" {
				return errors.New("no countdown target configured (set countdown.target, COUNTDOWN_TARGET, or --target)")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, now)); len(failed) > 0 {
				for _, r := range failed {
					fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", r.Name, r.Detail)
				}
				return fmt.Errorf("%d preflight check(s) failed; run 'countdown doctor' for details", len(failed))
			}

			encoder, err := container.ByName(cfg.Countdown.OutputFormat)
			if err != nil {
				return err
			}
			out, err := resolveOutput(cmd, opts.output, encoder.Extension())
			if err != nil {
				return err
			}

			renderCfg, err := countdown.RenderConfigFromConfig(cfg, now)
			if err != nil {
				return err
			}

			store, err := openFrameStore(cmd.Context(), cfg)
			if err != nil {
				logging.WarnWithContext(cmd.Context(), logger, "frame cache unavailable",
					"framecache_open_failed",
					logging.String("backend", cfg.Cache.Backend),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check cache.path or set cache.backend = \"none\""),
					logging.String(logging.FieldImpact, "rendering without a frame cache"))
				store = frameStore{}
			}
			defer store.Close()

			cd, err := countdown.New(renderCfg,
				countdown.WithStore(store.store),
				countdown.WithLogger(logger),
				countdown.WithWorkers(cfg.Countdown.Workers),
				countdown.WithDelay(cfg.Countdown.FrameDelay),
			)
			if err != nil {
				return err
			}

			anim, err := cd.Generate(cmd.Context(), cfg.Countdown.AnchorX, cfg.Countdown.AnchorY)
			if err != nil {
				return fmt.Errorf("generate countdown: %w", err)
			}

			written, err := out.write(func(w io.Writer) error {
				return encoder.Encode(w, anim)
			})
			if err != nil {
				return err
			}
			if out.path != "" {
				cached := 0
				for _, f := range anim.Frames {
					if f.Cached {
						cached++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d frames, %d from cache, %s)\n",
					out.path, len(anim.Frames), cached, humanize.IBytes(uint64(written)))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.target, "target", "", "Countdown target (RFC3339 or \"2006-01-02 15:04:05\" in the configured timezone)")
	flags.StringVar(&opts.now, "now", "", "Reference time instead of the current time")
	flags.IntVar(&opts.runtime, "runtime", 0, "Maximum seconds rendered (frames - 1)")
	flags.StringVar(&opts.defaultText, "default", "", "Text shown on the final frame")
	flags.IntVar(&opts.anchorX, "x", 0, "Text anchor x")
	flags.IntVar(&opts.anchorY, "y", 0, "Text anchor y")
	flags.StringVar(&opts.format, "format", "", "Output format: "+strings.Join(container.Names(), ", "))
	flags.IntVar(&opts.workers, "workers", 0, "Frames rendered concurrently (0 uses all CPUs)")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the frame cache")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file, or - for stdout")

	return cmd
}

// applyRenderFlags copies explicitly set flags over the loaded config.
func applyRenderFlags(cmd *cobra.Command, cfg *config.Config, opts *renderOptions) {
	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Countdown.Target = strings.TrimSpace(opts.target)
	}
	if flags.Changed("runtime") {
		cfg.Countdown.Runtime = opts.runtime
	}
	if flags.Changed("default") {
		cfg.Countdown.DefaultText = opts.defaultText
	}
	if flags.Changed("x") {
		cfg.Countdown.AnchorX = opts.anchorX
	}
	if flags.Changed("y") {
		cfg.Countdown.AnchorY = opts.anchorY
	}
	if flags.Changed("format") {
		cfg.Countdown.OutputFormat = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if flags.Changed("workers") {
		cfg.Countdown.Workers = opts.workers
	}
	if opts.noCache {
		cfg.Cache.Backend = config.CacheBackendNone
	}
}

type renderOutput struct {
	path   string
	stream io.Writer
}

func resolveOutput(cmd *cobra.Command, output, ext string) (renderOutput, error) {
	output = strings.TrimSpace(output)
	if output == "-" {
		w := cmd.OutOrStdout()
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return renderOutput{}, errors.New("refusing to write binary image data to a terminal; redirect stdout or use -o FILE")
		}
		return renderOutput{stream: w}, nil
	}
	if output == "" {
		output = "countdown" + ext
	}
	path, err := config.ExpandPath(output)
	if err != nil {
		return renderOutput{}, fmt.Errorf("resolve output path: %w", err)
	}
	return renderOutput{path: path}, nil
}

func (o renderOutput) write(encode func(io.Writer) error) (int64, error) {
	if o.stream != nil {
		cw := &countingWriter{w: o.stream}
		err := encode(cw)
		return cw.n, err
	}
	var written int64
	err := fileutil.WriteAtomic(o.path, 0o644, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		err := encode(cw)
		written = cw.n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", o.path, err)
	}
	return written, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
