package countdown

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"countdown/internal/framecache"
	"countdown/internal/logging"
)

// textBaselineFactor shifts the anchor so text sits roughly centred on anchorY.
const textBaselineFactor = 0.65

// Frame is one rendered countdown image.
type Frame struct {
	Seconds int
	// Text is the drawn string. It is empty when the frame came from the cache.
	Text  string
	Image image.Image
	// Encoded holds the PNG bytes stored in the frame cache.
	Encoded []byte
	// Delay is the display time in centiseconds.
	Delay  int
	Cached bool
}

// RenderFrame renders the frame showing seconds remaining with text anchored at
// (anchorX, anchorY). Negative seconds render as zero.
func (c *Countdown) RenderFrame(ctx context.Context, anchorX, anchorY, seconds int) (Frame, error) {
	return c.renderFrame(ctx, c.cacheFor(anchorX, anchorY), anchorX, anchorY, seconds)
}

func (c *Countdown) renderFrame(ctx context.Context, cache framecache.Adapter, anchorX, anchorY, seconds int) (Frame, error) {
	seconds = max(0, seconds)
	logger := logging.WithContext(ctx, c.logger)

	if frame, ok := c.cachedFrame(ctx, cache, seconds); ok {
		logger.Debug("frame served from cache", logging.Int(logging.FieldSeconds, seconds))
		return frame, nil
	}

	text := c.frameText(seconds)
	frameCanvas := c.background.Clone()
	metrics := frameCanvas.Measure(c.font, text)
	y := anchorY + int(math.Round(float64(metrics.TextHeight)*textBaselineFactor/2))
	frameCanvas.DrawText(c.font, anchorX, y, text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, frameCanvas.Image()); err != nil {
		return Frame{}, fmt.Errorf("render frame %ds: encode png: %w", seconds, err)
	}
	encoded := buf.Bytes()
	// Image is the decoded PNG on the cache path too.
	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return Frame{}, fmt.Errorf("render frame %ds: decode png: %w", seconds, err)
	}

	cache.Put(ctx, seconds, encoded)
	logger.Debug("frame rendered",
		logging.Int(logging.FieldSeconds, seconds),
		logging.String("text", text),
		logging.Int("bytes", len(encoded)),
	)

	return Frame{
		Seconds: seconds,
		Text:    text,
		Image:   img,
		Encoded: encoded,
		Delay:   c.delay,
	}, nil
}

// frameText applies the default-text rule: the default replaces the formatter
// output only on the terminal frame and only when it is non-empty.
func (c *Countdown) frameText(seconds int) string {
	if seconds == 0 && c.defaultText != "" {
		return c.defaultText
	}
	return c.formatter.Format(seconds)
}

func (c *Countdown) cachedFrame(ctx context.Context, cache framecache.Adapter, seconds int) (Frame, bool) {
	if !cache.Has(ctx, seconds) {
		return Frame{}, false
	}
	data, err := cache.Get(ctx, seconds)
	if err != nil {
		return Frame{}, false
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, c.logger), "cached frame is corrupt",
			"frame_decode_failed",
			logging.String(logging.FieldCacheKey, cache.Key(seconds)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'countdown cache prune' or clear the cache"),
			logging.String(logging.FieldImpact, "frame will be rendered fresh"))
		return Frame{}, false
	}
	return Frame{
		Seconds: seconds,
		Image:   img,
		Encoded: data,
		Delay:   c.delay,
		Cached:  true,
	}, true
}
