package container

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/setanarut/apng"

	"countdown/internal/countdown"
)

// APNG encodes animations as animated PNGs.
type APNG struct{}

func (APNG) Name() string        { return "apng" }
func (APNG) Extension() string   { return ".png" }
func (APNG) ContentType() string { return "image/apng" }

func (APNG) Encode(w io.Writer, anim countdown.Animation) error {
	if err := checkAnimation(anim); err != nil {
		return err
	}
	a := &apng.APNG{
		Images: make([]image.Image, len(anim.Frames)),
		Delays: make([]uint16, len(anim.Frames)),
	}
	for i, f := range anim.Frames {
		a.Images[i] = f.Image
		// Centiseconds; apng delays are a uint16 numerator over 100.
		a.Delays[i] = uint16(min(max(f.Delay, 0), math.MaxUint16))
	}
	if err := apng.EncodeAll(w, a); err != nil {
		return fmt.Errorf("encode apng: %w", err)
	}
	return nil
}
