package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/golang/freetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Canvas is an owned RGBA raster.
type Canvas struct {
	img *image.RGBA
}

// Metrics describes the rendered size of a string.
type Metrics struct {
	TextWidth  int
	TextHeight int
	Ascent     int
	Descent    int
}

// New copies src into a new canvas whose bounds start at the origin.
func New(src image.Image) (*Canvas, error) {
	if src == nil {
		return nil, errors.New("canvas: nil image")
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("canvas: empty image bounds %v", b)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Canvas{img: dst}, nil
}

// NewSolid returns a width×height canvas filled with c.
func NewSolid(width, height int, c color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return &Canvas{img: dst}, nil
}

// Load decodes a PNG, JPEG, or GIF file into a canvas.
func Load(path string) (*Canvas, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("canvas: open background: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("canvas: decode background %s: %w", path, err)
	}
	return New(img)
}

// Clone returns an independent copy; drawing on it never touches c.
func (c *Canvas) Clone() *Canvas {
	dst := &image.RGBA{
		Pix:    append([]uint8(nil), c.img.Pix...),
		Stride: c.img.Stride,
		Rect:   c.img.Rect,
	}
	return &Canvas{img: dst}
}

func (c *Canvas) Width() int { return c.img.Rect.Dx() }

func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the underlying raster. Callers must not mutate it.
func (c *Canvas) Image() *image.RGBA { return c.img }

// SampleColor downsamples the canvas to a single pixel and returns its color.
func (c *Canvas) SampleColor() color.RGBA {
	dot := image.NewRGBA(image.Rect(0, 0, 1, 1))
	draw.BiLinear.Scale(dot, dot.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)
	return dot.RGBAAt(0, 0)
}

// Measure returns the size text would occupy when drawn with f.
func (c *Canvas) Measure(f *Font, text string) Metrics {
	face := f.newFace()
	defer face.Close()

	m := face.Metrics()
	return Metrics{
		TextWidth:  font.MeasureString(face, text).Ceil(),
		TextHeight: (m.Ascent + m.Descent).Ceil(),
		Ascent:     m.Ascent.Ceil(),
		Descent:    m.Descent.Ceil(),
	}
}

// DrawText draws text with its baseline starting at (x, y).
func (c *Canvas) DrawText(f *Font, x, y int, text string) {
	face := f.newFace()
	defer face.Close()

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(f.Color()),
		Face: face,
		Dot:  freetype.Pt(x, y),
	}
	d.DrawString(text)
}
