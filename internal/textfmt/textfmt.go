// Package textfmt turns a seconds-remaining value into display text.
//
// A format holds the tokens {d}, {h}, {m} and {s}. Units missing from the
// format fold into the next larger unit that is present, so "{h}:{m}:{s}"
// shows 49 hours rather than 1 day and 1 hour. Each unit may be zero padded to
// a minimum width.
package textfmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Units in canonical order, largest first.
var Units = []string{"d", "h", "m", "s"}

var unitSeconds = map[string]int{
	"d": 86400,
	"h": 3600,
	"m": 60,
	"s": 1,
}

// Pad is the minimum display width for one unit.
type Pad struct {
	Unit  string
	Width int
}

// Formatter renders seconds into a string. It is immutable after New.
type Formatter struct {
	format string
	pads   map[string]int
	units  []string // present in format, largest first
}

// New validates format and pads. Pads for units absent from the format are kept
// because they are part of the formatter's identity.
func New(format string, pads map[string]int) (*Formatter, error) {
	if format == "" {
		return nil, errors.New("textfmt: empty format")
	}
	f := &Formatter{format: format, pads: make(map[string]int, len(pads))}
	for unit, width := range pads {
		if _, ok := unitSeconds[unit]; !ok {
			return nil, fmt.Errorf("textfmt: unknown pad unit %q", unit)
		}
		if width < 0 {
			return nil, fmt.Errorf("textfmt: negative pad width for %q", unit)
		}
		f.pads[unit] = width
	}
	for _, unit := range Units {
		if strings.Contains(format, token(unit)) {
			f.units = append(f.units, unit)
		}
	}
	if len(f.units) == 0 {
		return nil, fmt.Errorf("textfmt: format %q contains no {d} {h} {m} {s} token", format)
	}
	return f, nil
}

// MustNew is New for static formats; it panics on error.
func MustNew(format string, pads map[string]int) *Formatter {
	f, err := New(format, pads)
	if err != nil {
		panic(err)
	}
	return f
}

// Format renders seconds (negative values render as zero).
func (f *Formatter) Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	remaining := seconds
	pairs := make([]string, 0, len(f.units)*2)
	// Anything below the smallest present unit is truncated.
	for _, unit := range f.units {
		value := remaining / unitSeconds[unit]
		remaining -= value * unitSeconds[unit]
		pairs = append(pairs, token(unit), pad(value, f.pads[unit]))
	}
	return strings.NewReplacer(pairs...).Replace(f.format)
}

// FormatString returns the raw format.
func (f *Formatter) FormatString() string {
	return f.format
}

// Pads returns the pad rules in canonical unit order. Units without a rule are omitted.
func (f *Formatter) Pads() []Pad {
	out := make([]Pad, 0, len(f.pads))
	for _, unit := range Units {
		if width, ok := f.pads[unit]; ok {
			out = append(out, Pad{Unit: unit, Width: width})
		}
	}
	return out
}

func token(unit string) string {
	return "{" + unit + "}"
}

func pad(value, width int) string {
	s := strconv.Itoa(value)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
