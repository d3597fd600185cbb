package countdown

import (
	"image"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"countdown/internal/canvas"
	"countdown/internal/fingerprint"
	"countdown/internal/framecache"
	"countdown/internal/logging"
)

// Countdown renders frames for one immutable RenderConfig.
type Countdown struct {
	now         time.Time
	target      time.Time
	runtime     int
	defaultText string
	formatter   Formatter
	background  *canvas.Canvas
	font        *canvas.Font

	fingerprint string
	store       framecache.Store
	// adapters holds one framecache.Adapter per text anchor (image.Point).
	adapters sync.Map
	logger      *slog.Logger
	workers     int
	delay       int
}

// Option configures a Countdown.
type Option func(*Countdown)

// WithStore enables frame caching through store. A nil store disables caching.
func WithStore(store framecache.Store) Option {
	return func(c *Countdown) {
		c.store = store
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Countdown) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers renders up to n ticks concurrently. Values below 1 select
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Countdown) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	}
}

// WithDelay sets the per-frame display time in centiseconds.
func WithDelay(centiseconds int) Option {
	return func(c *Countdown) {
		if centiseconds > 0 {
			c.delay = centiseconds
		}
	}
}

// New validates cfg and computes its fingerprint.
func New(cfg RenderConfig, opts ...Option) (*Countdown, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Countdown{
		now:         cfg.Now,
		target:      cfg.Target,
		runtime:     cfg.Runtime,
		defaultText: norm.NFC.String(cfg.DefaultText),
		formatter:   cfg.Formatter,
		background:  cfg.Background.Clone(),
		font:        cfg.Font,
		logger:      logging.NewNop(),
		workers:     1,
		delay:       DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "countdown")
	c.fingerprint = fingerprint.Compute(c.fingerprintInput())
	return c, nil
}

// Fingerprint returns the hex digest identifying this render configuration.
func (c *Countdown) Fingerprint() string { return c.fingerprint }

// CacheEnabled reports whether frames are read from and written to a store.
func (c *Countdown) CacheEnabled() bool { return c.store != nil }

// CacheNamespace returns the cache key prefix for frames anchored at
// (anchorX, anchorY).
func (c *Countdown) CacheNamespace(anchorX, anchorY int) string {
	return fingerprint.Anchored(c.fingerprint, anchorX, anchorY)
}

func (c *Countdown) cacheFor(anchorX, anchorY int) framecache.Adapter {
	at := image.Pt(anchorX, anchorY)
	if a, ok := c.adapters.Load(at); ok {
		return a.(framecache.Adapter)
	}
	a, _ := c.adapters.LoadOrStore(at, framecache.New(c.store, c.CacheNamespace(anchorX, anchorY), c.now, c.logger))
	return a.(framecache.Adapter)
}

// Width returns the frame width in pixels.
func (c *Countdown) Width() int { return c.background.Width() }

// Height returns the frame height in pixels.
func (c *Countdown) Height() int { return c.background.Height() }

// EffectiveRuntime is the last tick index Generate renders:
// min(runtime, max(0, target-now)).
func (c *Countdown) EffectiveRuntime() int {
	return min(c.runtime, max(0, c.diff()))
}

func (c *Countdown) diff() int {
	return int(c.target.Unix() - c.now.Unix())
}

func (c *Countdown) fingerprintInput() fingerprint.Input {
	pads := c.formatter.Pads()
	fpPads := make([]fingerprint.Pad, 0, len(pads))
	for _, p := range pads {
		fpPads = append(fpPads, fingerprint.Pad{Unit: p.Unit, Width: p.Width})
	}
	zone := c.target.Location().String()
	if zone == "" {
		_, offset := c.target.Zone()
		zone = "UTC" + strconv.Itoa(offset)
	}
	return fingerprint.Input{
		TargetUnix:      c.target.Unix(),
		TargetZone:      zone,
		DefaultText:     c.defaultText,
		Format:          c.formatter.FormatString(),
		Pads:            fpPads,
		Width:           c.background.Width(),
		Height:          c.background.Height(),
		BackgroundColor: canvas.FormatColor(c.background.SampleColor()),
		FontFamily:      c.font.Family(),
		FontSize:        c.font.Size(),
		FontColor:       c.font.ColorString(),
	}
}
