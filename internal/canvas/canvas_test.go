package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func mustSolid(t *testing.T, w, h int, c color.Color) *Canvas {
	t.Helper()
	cv, err := NewSolid(w, h, c)
	if err != nil {
		t.Fatalf("NewSolid: %v", err)
	}
	return cv
}

func mustDefaultFont(t *testing.T, size float64) *Font {
	t.Helper()
	f, err := DefaultFont(size, white)
	if err != nil {
		t.Fatalf("DefaultFont: %v", err)
	}
	return f
}

func TestCloneIsIndependent(t *testing.T) {
	base := mustSolid(t, 120, 40, black)
	clone := base.Clone()
	clone.DrawText(mustDefaultFont(t, 24), 5, 30, "88")

	if bytes.Equal(base.Image().Pix, clone.Image().Pix) {
		t.Fatal("expected drawing on the clone to change its pixels")
	}
	for i, v := range base.Image().Pix {
		want := uint8(0)
		if i%4 == 3 {
			want = 0xff
		}
		if v != want {
			t.Fatalf("base pixel byte %d changed to %d", i, v)
		}
	}
}

func TestSampleColorSolid(t *testing.T) {
	c := color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	cv := mustSolid(t, 64, 32, c)
	if got := cv.SampleColor(); got != c {
		t.Fatalf("SampleColor() = %v, want %v", got, c)
	}
}

func TestSampleColorDistinguishesBackgrounds(t *testing.T) {
	a := mustSolid(t, 10, 10, black).SampleColor()
	b := mustSolid(t, 10, 10, white).SampleColor()
	if a == b {
		t.Fatalf("expected different samples, both %v", a)
	}
}

func TestMeasure(t *testing.T) {
	cv := mustSolid(t, 10, 10, black)
	small := cv.Measure(mustDefaultFont(t, 12), "00:00")
	large := cv.Measure(mustDefaultFont(t, 48), "00:00")
	if small.TextHeight <= 0 || small.TextWidth <= 0 {
		t.Fatalf("expected positive metrics, got %+v", small)
	}
	if large.TextHeight <= small.TextHeight {
		t.Fatalf("expected larger font to be taller: %d <= %d", large.TextHeight, small.TextHeight)
	}
	if large.TextHeight != large.Ascent+large.Descent && large.TextHeight != large.Ascent+large.Descent-1 {
		t.Fatalf("unexpected height %d for ascent %d descent %d", large.TextHeight, large.Ascent, large.Descent)
	}
}

func TestDrawTextDeterministic(t *testing.T) {
	f := mustDefaultFont(t, 32)
	a := mustSolid(t, 200, 60, black)
	b := mustSolid(t, 200, 60, black)
	a.DrawText(f, 10, 45, "12:34")
	b.DrawText(f, 10, 45, "12:34")
	if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
		t.Fatal("expected identical pixels for identical draws")
	}
}

func TestLoadBackground(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 30, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	file.Close()

	cv, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cv.Width() != 30 || cv.Height() != 20 {
		t.Fatalf("unexpected size %dx%d", cv.Width(), cv.Height())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewSolidRejectsEmpty(t *testing.T) {
	if _, err := NewSolid(0, 10, black); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestDefaultFontDescriptor(t *testing.T) {
	f := mustDefaultFont(t, 20)
	if !strings.HasPrefix(f.Family(), "Go") {
		t.Fatalf("unexpected family %q", f.Family())
	}
	if f.Size() != 20 {
		t.Fatalf("unexpected size %v", f.Size())
	}
	if f.ColorString() != "#ffffffff" {
		t.Fatalf("unexpected color %q", f.ColorString())
	}
	if _, err := ParseFont([]byte("not a font"), 12, white); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := DefaultFont(0, white); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#000", want: color.RGBA{A: 0xff}},
		{in: "#ff8800", want: color.RGBA{R: 0xff, G: 0x88, A: 0xff}},
		{in: "FF880080", want: color.RGBA{R: 0xff, G: 0x88, A: 0x80}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseColor(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if back, _ := ParseColor(FormatColor(got)); back != got {
			t.Fatalf("FormatColor round trip mismatch for %q", tt.in)
		}
	}
}
