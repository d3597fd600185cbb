package countdown

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"countdown/internal/framecache"
	"countdown/internal/logging"
)

// Animation is an ordered frame sequence ready for container encoding.
type Animation struct {
	Frames      []Frame
	Fingerprint string
	Width       int
	Height      int
}

// Generate renders every tick of the effective runtime window. Frames are
// returned in tick order, largest seconds-remaining first. Any render error
// aborts the whole animation.
func (c *Countdown) Generate(ctx context.Context, anchorX, anchorY int) (Animation, error) {
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.WithRequestID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, c.logger)

	diff := c.diff()
	effective := c.EffectiveRuntime()
	frames := make([]Frame, effective+1)
	cache := c.cacheFor(anchorX, anchorY)
	started := time.Now()

	logger.Info("generating countdown",
		logging.String(logging.FieldFingerprint, c.fingerprint),
		logging.Int("frames", len(frames)),
		logging.Int("workers", c.workers),
		logging.Bool("cache_enabled", cache.Enabled()),
	)

	var err error
	if c.workers > 1 && len(frames) > 1 {
		err = c.renderParallel(ctx, cache, anchorX, anchorY, diff, frames)
	} else {
		err = c.renderSequential(ctx, cache, anchorX, anchorY, diff, frames)
	}
	if err != nil {
		return Animation{}, err
	}

	cached := 0
	for _, f := range frames {
		if f.Cached {
			cached++
		}
	}
	logger.Info("countdown generated",
		logging.String(logging.FieldFingerprint, c.fingerprint),
		logging.Int("frames", len(frames)),
		logging.Int("cached_frames", cached),
		logging.Duration("elapsed", time.Since(started)),
	)

	return Animation{
		Frames:      frames,
		Fingerprint: c.fingerprint,
		Width:       c.Width(),
		Height:      c.Height(),
	}, nil
}

func (c *Countdown) renderSequential(ctx context.Context, cache framecache.Adapter, anchorX, anchorY, diff int, frames []Frame) error {
	for tick := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := c.renderFrame(ctx, cache, anchorX, anchorY, diff-tick)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		frames[tick] = frame
	}
	return nil
}

// renderParallel fills frames by tick index so completion order never leaks
// into the output.
func (c *Countdown) renderParallel(ctx context.Context, cache framecache.Adapter, anchorX, anchorY, diff int, frames []Frame) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for tick := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frame, err := c.renderFrame(gctx, cache, anchorX, anchorY, diff-tick)
			if err != nil {
				return fmt.Errorf("tick %d: %w", tick, err)
			}
			frames[tick] = frame
			return nil
		})
	}
	return g.Wait()
}
