package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Pad is one unit's zero-padding rule.
type Pad struct {
	Unit  string
	Width int
}

// Input lists the pixel-affecting configuration.
type Input struct {
	TargetUnix      int64
	TargetZone      string
	DefaultText     string
	Format          string
	Pads            []Pad
	Width           int
	Height          int
	BackgroundColor string
	FontFamily      string
	FontSize        float64
	FontColor       string
}

var unitRank = map[string]int{"d": 0, "h": 1, "m": 2, "s": 3}

// Compute returns the lowercase hex SHA-256 fingerprint of in.
func Compute(in Input) string {
	h := sha256.New()

	writeField(h, "target.timestamp", strconv.FormatInt(in.TargetUnix, 10))
	writeField(h, "target.timezone", in.TargetZone)
	writeField(h, "default", norm.NFC.String(in.DefaultText))
	writeField(h, "formatter.format", in.Format)

	pads := effectivePads(in.Format, in.Pads)
	sort.SliceStable(pads, func(i, j int) bool {
		ri, iok := unitRank[pads[i].Unit]
		rj, jok := unitRank[pads[j].Unit]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return pads[i].Unit < pads[j].Unit
		}
	})
	for _, p := range pads {
		writeField(h, "formatter.pads."+p.Unit, strconv.Itoa(p.Width))
	}

	writeField(h, "background.width", strconv.Itoa(in.Width))
	writeField(h, "background.height", strconv.Itoa(in.Height))
	writeField(h, "background.color", in.BackgroundColor)
	writeField(h, "font.family", in.FontFamily)
	writeField(h, "font.size", strconv.FormatFloat(in.FontSize, 'g', -1, 64))
	writeField(h, "font.color", in.FontColor)

	return hex.EncodeToString(h.Sum(nil))
}

// effectivePads drops rules that cannot change the rendered text: widths of
// one or less, and units whose token is absent from format.
func effectivePads(format string, pads []Pad) []Pad {
	out := make([]Pad, 0, len(pads))
	for _, p := range pads {
		if p.Width > 1 && strings.Contains(format, "{"+p.Unit+"}") {
			out = append(out, p)
		}
	}
	return out
}

// Anchored derives the frame cache namespace for text anchored at (x, y). The
// anchor changes pixels but is chosen per request, so it stays out of Compute.
func Anchored(fp string, x, y int) string {
	h := sha256.New()
	writeField(h, "fingerprint", fp)
	writeField(h, "anchor.x", strconv.Itoa(x))
	writeField(h, "anchor.y", strconv.Itoa(y))
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, key, value string) {
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte{'='})
	_, _ = h.Write([]byte(strconv.Itoa(len(value))))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(value))
	_, _ = h.Write([]byte{0})
}
