package container

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"

	"golang.org/x/image/draw"

	"countdown/internal/countdown"
)

// GIF encodes animations as looping GIFs quantized to the Plan 9 palette.
// Quantization never dithers, so equal frames always encode to equal bytes.
type GIF struct{}

func (GIF) Name() string        { return "gif" }
func (GIF) Extension() string   { return ".gif" }
func (GIF) ContentType() string { return "image/gif" }

func (GIF) Encode(w io.Writer, anim countdown.Animation) error {
	if err := checkAnimation(anim); err != nil {
		return err
	}
	out := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(anim.Frames)),
		Delay:     make([]int, 0, len(anim.Frames)),
		LoopCount: 0,
	}
	for _, f := range anim.Frames {
		out.Image = append(out.Image, toPaletted(f.Image))
		out.Delay = append(out.Delay, f.Delay)
	}
	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

func toPaletted(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
