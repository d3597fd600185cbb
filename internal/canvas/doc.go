// Package canvas wraps an RGBA raster with the few operations the countdown
// renderer needs: independent clones, a 1×1 representative color sample,
// font metrics, and text drawing.
//
// Fonts are parsed once with freetype; a fresh face is created per measure or
// draw call because truetype faces cache glyphs and are not safe for
// concurrent use.
package canvas
