package countdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"testing"
	"time"

	"countdown/internal/canvas"
	"countdown/internal/config"
	"countdown/internal/framecache"
	"countdown/internal/testsupport"
	"countdown/internal/textfmt"
)

var t0 = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func testRenderConfig(t *testing.T, targetOffset time.Duration, runtime int, defaultText string) RenderConfig {
	t.Helper()
	bg, err := canvas.NewSolid(120, 40, color.RGBA{A: 0xff})
	if err != nil {
		t.Fatalf("NewSolid: %v", err)
	}
	face, err := canvas.DefaultFont(20, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	if err != nil {
		t.Fatalf("DefaultFont: %v", err)
	}
	return RenderConfig{
		Now:         t0,
		Target:      t0.Add(targetOffset),
		Runtime:     runtime,
		DefaultText: defaultText,
		Formatter:   textfmt.MustNew("{s}", nil),
		Background:  bg,
		Font:        face,
	}
}

func newTestCountdown(t *testing.T, cfg RenderConfig, opts ...Option) *Countdown {
	t.Helper()
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func secondsOf(anim Animation) []int {
	out := make([]int, len(anim.Frames))
	for i, f := range anim.Frames {
		out[i] = f.Seconds
	}
	return out
}

// samePixels reports whether a and b have the same concrete type, bounds and
// non-premultiplied pixels.
func samePixels(a, b image.Image) bool {
	if fmt.Sprintf("%T", a) != fmt.Sprintf("%T", b) || a.Bounds() != b.Bounds() {
		return false
	}
	r := a.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if color.NRGBAModel.Convert(a.At(x, y)) != color.NRGBAModel.Convert(b.At(x, y)) {
				return false
			}
		}
	}
	return true
}

func gifBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	return buf.Bytes()
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGenerateCountsDownToDefaultText(t *testing.T) {
	c := newTestCountdown(t, testRenderConfig(t, 5*time.Second, 10, "DONE"))

	anim, err := c.Generate(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got, want := secondsOf(anim), []int{5, 4, 3, 2, 1, 0}; !equalInts(got, want) {
		t.Fatalf("seconds = %v, want %v", got, want)
	}
	wantText := []string{"5", "4", "3", "2", "1", "DONE"}
	for i, f := range anim.Frames {
		if f.Text != wantText[i] {
			t.Fatalf("frame %d text = %q, want %q", i, f.Text, wantText[i])
		}
		if f.Delay != DefaultDelay {
			t.Fatalf("frame %d delay = %d", i, f.Delay)
		}
		if len(f.Encoded) == 0 || f.Image == nil {
			t.Fatalf("frame %d missing pixels", i)
		}
	}
	if anim.Width != 120 || anim.Height != 40 {
		t.Fatalf("animation size = %dx%d", anim.Width, anim.Height)
	}
	if anim.Fingerprint != c.Fingerprint() || len(anim.Fingerprint) != 64 {
		t.Fatalf("unexpected fingerprint %q", anim.Fingerprint)
	}
}

func TestGeneratePastTargetProducesSingleFrame(t *testing.T) {
	cases := []struct {
		name        string
		defaultText string
		wantText    string
	}{
		{"with default", "Expired", "Expired"},
		{"without default", "", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCountdown(t, testRenderConfig(t, -5*time.Second, 10, tc.defaultText))
			anim, err := c.Generate(context.Background(), 0, 20)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(anim.Frames) != 1 {
				t.Fatalf("expected 1 frame, got %d", len(anim.Frames))
			}
			if f := anim.Frames[0]; f.Seconds != 0 || f.Text != tc.wantText {
				t.Fatalf("frame = %d %q, want 0 %q", f.Seconds, f.Text, tc.wantText)
			}
		})
	}
}

func TestEffectiveRuntimeBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		offset  time.Duration
		runtime int
		want    int
	}{
		{"target passed", -time.Minute, 30, 0},
		{"target equals now", 0, 30, 0},
		{"remaining below runtime", 7 * time.Second, 30, 7},
		{"remaining equals runtime", 30 * time.Second, 30, 30},
		{"runtime caps remaining", time.Hour, 3, 3},
		{"zero runtime", time.Hour, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCountdown(t, testRenderConfig(t, tc.offset, tc.runtime, ""))
			if got := c.EffectiveRuntime(); got != tc.want {
				t.Fatalf("EffectiveRuntime = %d, want %d", got, tc.want)
			}
			anim, err := c.Generate(context.Background(), 0, 20)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(anim.Frames) != tc.want+1 {
				t.Fatalf("frames = %d, want %d", len(anim.Frames), tc.want+1)
			}
		})
	}
}

func TestRenderFrameDefaultTextRule(t *testing.T) {
	ctx := context.Background()
	withDefault := newTestCountdown(t, testRenderConfig(t, time.Minute, 5, "Go!"))
	withoutDefault := newTestCountdown(t, testRenderConfig(t, time.Minute, 5, ""))

	cases := []struct {
		c       *Countdown
		seconds int
		want    string
	}{
		{withDefault, 0, "Go!"},
		{withDefault, 1, "1"},
		{withDefault, -4, "Go!"},
		{withoutDefault, 0, "0"},
		{withoutDefault, 12, "12"},
	}
	for _, tc := range cases {
		frame, err := tc.c.RenderFrame(ctx, 0, 20, tc.seconds)
		if err != nil {
			t.Fatalf("RenderFrame(%d) failed: %v", tc.seconds, err)
		}
		if frame.Text != tc.want {
			t.Fatalf("RenderFrame(%d) text = %q, want %q", tc.seconds, frame.Text, tc.want)
		}
		if frame.Seconds < 0 {
			t.Fatalf("seconds not clamped: %d", frame.Seconds)
		}
	}
}

func TestRenderFrameCacheTransparency(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewFakeStore()
	c := newTestCountdown(t, testRenderConfig(t, time.Minute, 5, ""), WithStore(store))

	first, err := c.RenderFrame(ctx, 4, 20, 3)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if first.Cached {
		t.Fatal("first render should miss the cache")
	}
	if store.SaveCalls != 1 {
		t.Fatalf("expected one save, got %d", store.SaveCalls)
	}
	entry, ok := store.Entry(framecache.Key(c.CacheNamespace(4, 20), 3))
	if !ok {
		t.Fatal("frame not stored under the anchored namespace key")
	}
	if want := t0.Add(4 * time.Second); !entry.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", entry.ExpiresAt, want)
	}

	second, err := c.RenderFrame(ctx, 4, 20, 3)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !second.Cached {
		t.Fatal("second render should hit the cache")
	}
	if !bytes.Equal(first.Encoded, second.Encoded) {
		t.Fatal("cached frame differs from rendered frame")
	}
	if second.Image.Bounds() != first.Image.Bounds() {
		t.Fatalf("bounds differ: %v vs %v", second.Image.Bounds(), first.Image.Bounds())
	}
}

func TestDisabledCacheMatchesCachedOutput(t *testing.T) {
	ctx := context.Background()
	cfg := testRenderConfig(t, 3*time.Second, 10, "DONE")

	plain := newTestCountdown(t, cfg)
	if plain.CacheEnabled() {
		t.Fatal("expected cache disabled without a store")
	}
	store := testsupport.NewFakeStore()
	cached := newTestCountdown(t, cfg, WithStore(store))
	if plain.Fingerprint() != cached.Fingerprint() {
		t.Fatal("cache choice must not change the fingerprint")
	}

	a, err := plain.Generate(ctx, 5, 25)
	if err != nil {
		t.Fatalf("plain Generate: %v", err)
	}
	// Warm the cache, then read through it.
	if _, err := cached.Generate(ctx, 5, 25); err != nil {
		t.Fatalf("warm Generate: %v", err)
	}
	b, err := cached.Generate(ctx, 5, 25)
	if err != nil {
		t.Fatalf("cached Generate: %v", err)
	}
	if len(a.Frames) != len(b.Frames) {
		t.Fatalf("frame count differs: %d vs %d", len(a.Frames), len(b.Frames))
	}
	for i := range a.Frames {
		if a.Frames[i].Cached {
			t.Fatalf("plain frame %d marked cached", i)
		}
		if !b.Frames[i].Cached {
			t.Fatalf("warm frame %d not served from cache", i)
		}
		if !bytes.Equal(a.Frames[i].Encoded, b.Frames[i].Encoded) {
			t.Fatalf("frame %d differs between cached and uncached runs", i)
		}
		if !samePixels(a.Frames[i].Image, b.Frames[i].Image) {
			t.Fatalf("frame %d image differs between cached and uncached runs", i)
		}
	}
}

func TestCacheTransparencyWithTranslucentPixels(t *testing.T) {
	ctx := context.Background()
	cfg := testRenderConfig(t, 3*time.Second, 10, "DONE")
	bg, err := canvas.NewSolid(120, 40, color.RGBA{R: 0x20, G: 0x10, A: 0x33})
	if err != nil {
		t.Fatalf("NewSolid: %v", err)
	}
	face, err := canvas.DefaultFont(20, color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0x99})
	if err != nil {
		t.Fatalf("DefaultFont: %v", err)
	}
	cfg.Background = bg
	cfg.Font = face

	store := testsupport.NewFakeStore()
	c := newTestCountdown(t, cfg, WithStore(store))
	cold, err := c.Generate(ctx, 5, 25)
	if err != nil {
		t.Fatalf("cold Generate: %v", err)
	}
	warm, err := c.Generate(ctx, 5, 25)
	if err != nil {
		t.Fatalf("warm Generate: %v", err)
	}
	uncached, err := newTestCountdown(t, cfg).Generate(ctx, 5, 25)
	if err != nil {
		t.Fatalf("uncached Generate: %v", err)
	}

	for i := range cold.Frames {
		if cold.Frames[i].Cached || !warm.Frames[i].Cached {
			t.Fatalf("frame %d: cold cached=%v warm cached=%v", i, cold.Frames[i].Cached, warm.Frames[i].Cached)
		}
		if !samePixels(cold.Frames[i].Image, warm.Frames[i].Image) {
			t.Fatalf("frame %d: warm cache changed the image", i)
		}
		if !samePixels(uncached.Frames[i].Image, warm.Frames[i].Image) {
			t.Fatalf("frame %d: cached image differs from an uncached render", i)
		}
		if got, want := gifBytes(t, warm.Frames[i].Image), gifBytes(t, uncached.Frames[i].Image); !bytes.Equal(got, want) {
			t.Fatalf("frame %d: gif output depends on the cache", i)
		}
	}
}

func TestCacheIsScopedToAnchor(t *testing.T) {
	ctx := context.Background()
	cfg := testRenderConfig(t, time.Minute, 5, "")
	store := testsupport.NewFakeStore()

	warm := newTestCountdown(t, cfg, WithStore(store))
	if _, err := warm.RenderFrame(ctx, 2, 10, 3); err != nil {
		t.Fatalf("warm render: %v", err)
	}
	if warm.CacheNamespace(2, 10) == warm.CacheNamespace(40, 25) {
		t.Fatal("expected anchors to produce distinct namespaces")
	}

	moved, err := newTestCountdown(t, cfg, WithStore(store)).RenderFrame(ctx, 40, 25, 3)
	if err != nil {
		t.Fatalf("moved render: %v", err)
	}
	if moved.Cached {
		t.Fatal("frame drawn at another anchor must not be served from cache")
	}
	want, err := newTestCountdown(t, cfg).RenderFrame(ctx, 40, 25, 3)
	if err != nil {
		t.Fatalf("uncached render: %v", err)
	}
	if !bytes.Equal(moved.Encoded, want.Encoded) {
		t.Fatal("moved anchor rendered different pixels than an uncached render")
	}

	again, err := newTestCountdown(t, cfg, WithStore(store)).RenderFrame(ctx, 2, 10, 3)
	if err != nil {
		t.Fatalf("repeat render: %v", err)
	}
	if !again.Cached {
		t.Fatal("same anchor should still hit the cache")
	}
}

func TestFailingStoreStillRenders(t *testing.T) {
	store := testsupport.NewFakeStore()
	store.FailHas = true
	store.FailGet = true
	store.FailSave = true
	c := newTestCountdown(t, testRenderConfig(t, 2*time.Second, 10, ""), WithStore(store))

	anim, err := c.Generate(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got, want := secondsOf(anim), []int{2, 1, 0}; !equalInts(got, want) {
		t.Fatalf("seconds = %v, want %v", got, want)
	}
	if store.Len() != 0 {
		t.Fatalf("failing store should hold nothing, has %d", store.Len())
	}
}

func TestCorruptCacheEntryFallsBackToRender(t *testing.T) {
	ctx := context.Background()
	store := testsupport.NewFakeStore()
	c := newTestCountdown(t, testRenderConfig(t, time.Minute, 5, ""), WithStore(store))
	key := framecache.Key(c.CacheNamespace(0, 20), 2)
	store.Put(framecache.Entry{Key: key, Value: []byte("not a png"), ExpiresAt: t0.Add(time.Hour)})

	frame, err := c.RenderFrame(ctx, 0, 20, 2)
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if frame.Cached || frame.Text != "2" {
		t.Fatalf("expected fresh render, got cached=%v text=%q", frame.Cached, frame.Text)
	}
	entry, _ := store.Entry(key)
	if !bytes.Equal(entry.Value, frame.Encoded) {
		t.Fatal("corrupt entry should be overwritten with the fresh frame")
	}
}

func TestParallelGenerateKeepsTickOrder(t *testing.T) {
	ctx := context.Background()
	cfg := testRenderConfig(t, 12*time.Second, 12, "DONE")

	sequential, err := newTestCountdown(t, cfg).Generate(ctx, 3, 22)
	if err != nil {
		t.Fatalf("sequential Generate: %v", err)
	}
	parallel, err := newTestCountdown(t, cfg, WithWorkers(4), WithStore(testsupport.NewFakeStore())).Generate(ctx, 3, 22)
	if err != nil {
		t.Fatalf("parallel Generate: %v", err)
	}
	if !equalInts(secondsOf(sequential), secondsOf(parallel)) {
		t.Fatalf("order differs: %v vs %v", secondsOf(sequential), secondsOf(parallel))
	}
	for i := range sequential.Frames {
		if !bytes.Equal(sequential.Frames[i].Encoded, parallel.Frames[i].Encoded) {
			t.Fatalf("frame %d differs between sequential and parallel renders", i)
		}
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	for _, workers := range []int{1, 4} {
		c := newTestCountdown(t, testRenderConfig(t, time.Minute, 30, ""), WithWorkers(workers))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := c.Generate(ctx, 0, 20); !errors.Is(err, context.Canceled) {
			t.Fatalf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestWithDelay(t *testing.T) {
	c := newTestCountdown(t, testRenderConfig(t, time.Second, 5, ""), WithDelay(50))
	anim, err := c.Generate(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, f := range anim.Frames {
		if f.Delay != 50 {
			t.Fatalf("delay = %d, want 50", f.Delay)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	valid := testRenderConfig(t, time.Minute, 5, "")
	cases := map[string]func(*RenderConfig){
		"nil formatter":    func(c *RenderConfig) { c.Formatter = nil },
		"nil background":   func(c *RenderConfig) { c.Background = nil },
		"nil font":         func(c *RenderConfig) { c.Font = nil },
		"negative runtime": func(c *RenderConfig) { c.Runtime = -1 },
		"runtime too long": func(c *RenderConfig) { c.Runtime = config.MaxRuntime + 1 },
		"huge runtime":     func(c *RenderConfig) { c.Runtime = math.MaxInt },
		"zero target":      func(c *RenderConfig) { c.Target = time.Time{} },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestFingerprintIgnoresNowAndRuntime(t *testing.T) {
	base := testRenderConfig(t, time.Hour, 10, "DONE")
	moved := base
	moved.Now = base.Now.Add(-30 * time.Minute)
	moved.Runtime = 99

	if newTestCountdown(t, base).Fingerprint() != newTestCountdown(t, moved).Fingerprint() {
		t.Fatal("now and runtime must not affect the fingerprint")
	}

	changed := base
	changed.DefaultText = "FINISHED"
	if newTestCountdown(t, base).Fingerprint() == newTestCountdown(t, changed).Fingerprint() {
		t.Fatal("default text must affect the fingerprint")
	}

	retargeted := base
	retargeted.Target = base.Target.Add(time.Second)
	if newTestCountdown(t, base).Fingerprint() == newTestCountdown(t, retargeted).Fingerprint() {
		t.Fatal("target must affect the fingerprint")
	}
}

func TestBackgroundIsNotMutatedByRendering(t *testing.T) {
	cfg := testRenderConfig(t, time.Minute, 3, "")
	before := append([]uint8(nil), cfg.Background.Image().Pix...)
	c := newTestCountdown(t, cfg)
	if _, err := c.Generate(context.Background(), 0, 20); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !bytes.Equal(before, cfg.Background.Image().Pix) {
		t.Fatal("background pixels changed during rendering")
	}
}

func TestRenderConfigFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithTarget("2030-06-01 12:00:10"),
		testsupport.WithBackgroundImage(64, 32),
	)
	cfg.Countdown.Timezone = "Europe/Berlin"
	cfg.Countdown.DefaultText = "Now"

	rc, err := RenderConfigFromConfig(cfg, t0)
	if err != nil {
		t.Fatalf("RenderConfigFromConfig failed: %v", err)
	}
	if rc.Background.Width() != 64 || rc.Background.Height() != 32 {
		t.Fatalf("background size = %dx%d", rc.Background.Width(), rc.Background.Height())
	}
	if rc.Target.Location().String() != "Europe/Berlin" {
		t.Fatalf("target zone = %s", rc.Target.Location())
	}
	if rc.Formatter.FormatString() != cfg.Formatter.Format {
		t.Fatalf("format = %q", rc.Formatter.FormatString())
	}

	cfg.Background.Path = "/does/not/exist.png"
	if _, err := RenderConfigFromConfig(cfg, t0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for missing background, got %v", err)
	}
}
