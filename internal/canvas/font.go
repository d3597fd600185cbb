package canvas

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a parsed TrueType font with a fixed size and color.
type Font struct {
	ttf    *truetype.Font
	family string
	size   float64
	color  color.RGBA
}

// LoadFont reads a TrueType file.
func LoadFont(path string, size float64, c color.RGBA) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("canvas: read font: %w", err)
	}
	return ParseFont(data, size, c)
}

// DefaultFont returns the bundled Go Regular face.
func DefaultFont(size float64, c color.RGBA) (*Font, error) {
	return ParseFont(goregular.TTF, size, c)
}

// ParseFont parses TrueType data.
func ParseFont(data []byte, size float64, c color.RGBA) (*Font, error) {
	if size <= 0 {
		return nil, fmt.Errorf("canvas: invalid font size %v", size)
	}
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("canvas: parse font: %w", err)
	}
	family := strings.TrimSpace(ttf.Name(truetype.NameIDFontFamily))
	if sub := strings.TrimSpace(ttf.Name(truetype.NameIDFontSubfamily)); sub != "" {
		family += " " + sub
	}
	return &Font{ttf: ttf, family: family, size: size, color: c}, nil
}

func (f *Font) Family() string { return f.family }

func (f *Font) Size() float64 { return f.size }

func (f *Font) Color() color.RGBA { return f.color }

// ColorString returns the font color as #rrggbbaa.
func (f *Font) ColorString() string { return FormatColor(f.color) }

func (f *Font) newFace() font.Face {
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    f.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
