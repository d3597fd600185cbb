package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"countdown/internal/canvas"
	"countdown/internal/config"
	"countdown/internal/textfmt"
)

// ErrInvalidConfig reports a RenderConfig that cannot be rendered.
var ErrInvalidConfig = errors.New("invalid render config")

// DefaultDelay is the per-frame display time in centiseconds.
const DefaultDelay = 100

// Formatter turns seconds remaining into display text. FormatString and Pads
// only feed the fingerprint.
type Formatter interface {
	Format(seconds int) string
	FormatString() string
	Pads() []textfmt.Pad
}

// RenderConfig is everything a Countdown needs to render frames.
type RenderConfig struct {
	Now         time.Time
	Target      time.Time
	Runtime     int
	DefaultText string
	Formatter   Formatter
	Background  *canvas.Canvas
	Font        *canvas.Font
}

func (c RenderConfig) validate() error {
	var problems []string
	if c.Now.IsZero() {
		problems = append(problems, "now is unset")
	}
	if c.Target.IsZero() {
		problems = append(problems, "target is unset")
	}
	if c.Runtime < 0 {
		problems = append(problems, fmt.Sprintf("runtime %d is negative", c.Runtime))
	}
	if c.Runtime > config.MaxRuntime {
		problems = append(problems, fmt.Sprintf("runtime %d exceeds %d", c.Runtime, config.MaxRuntime))
	}
	if c.Formatter == nil {
		problems = append(problems, "formatter is nil")
	}
	if c.Background == nil {
		problems = append(problems, "background is nil")
	}
	if c.Font == nil {
		problems = append(problems, "font is nil")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// RenderConfigFromConfig loads the background and font described by cfg and
// returns a RenderConfig anchored at now. Unreadable files are configuration
// errors.
func RenderConfigFromConfig(cfg *config.Config, now time.Time) (RenderConfig, error) {
	if cfg == nil {
		return RenderConfig{}, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	target, err := cfg.TargetTime()
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%w: target: %v", ErrInvalidConfig, err)
	}

	formatter, err := textfmt.New(cfg.Formatter.Format, cfg.Formatter.Pads)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%w: formatter: %v", ErrInvalidConfig, err)
	}

	background, err := loadBackground(cfg.Background)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}

	fontColor, err := canvas.ParseColor(cfg.Font.Color)
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%w: font color: %v", ErrInvalidConfig, err)
	}
	var face *canvas.Font
	if cfg.Font.Path != "" {
		face, err = canvas.LoadFont(cfg.Font.Path, cfg.Font.Size, fontColor)
	} else {
		face, err = canvas.DefaultFont(cfg.Font.Size, fontColor)
	}
	if err != nil {
		return RenderConfig{}, fmt.Errorf("%w: font: %v", ErrInvalidConfig, err)
	}

	return RenderConfig{
		Now:         now,
		Target:      target,
		Runtime:     cfg.Countdown.Runtime,
		DefaultText: cfg.Countdown.DefaultText,
		Formatter:   formatter,
		Background:  background,
		Font:        face,
	}, nil
}

func loadBackground(bg config.Background) (*canvas.Canvas, error) {
	if bg.Path != "" {
		return canvas.Load(bg.Path)
	}
	fill, err := canvas.ParseColor(bg.Color)
	if err != nil {
		return nil, err
	}
	return canvas.NewSolid(bg.Width, bg.Height, fill)
}
