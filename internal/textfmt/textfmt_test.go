package textfmt

import (
	"reflect"
	"testing"
)

func TestFormat(t *testing.T) {
	pads := map[string]int{"d": 2, "h": 2, "m": 2, "s": 2}
	tests := []struct {
		name    string
		format  string
		pads    map[string]int
		seconds int
		want    string
	}{
		{"all units", "{d}:{h}:{m}:{s}", pads, 90061, "01:01:01:01"},
		{"zero", "{d}:{h}:{m}:{s}", pads, 0, "00:00:00:00"},
		{"negative clamps", "{d}:{h}:{m}:{s}", pads, -30, "00:00:00:00"},
		{"days fold into hours", "{h}:{m}:{s}", pads, 2*86400 + 3600 + 5, "49:00:05"},
		{"seconds only", "{s}", nil, 125, "125"},
		{"minutes drop seconds", "{m} min", nil, 119, "1 min"},
		{"wide pad", "{s}", map[string]int{"s": 4}, 7, "0007"},
		{"repeated token", "{s}/{s}", nil, 3, "3/3"},
		{"literal text", "T-{m}m{s}s", map[string]int{"s": 2}, 65, "T-1m05s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.format, tt.pads)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := f.Format(tt.seconds); got != tt.want {
				t.Fatalf("Format(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Fatal("expected error for empty format")
	}
	if _, err := New("soon", nil); err == nil {
		t.Fatal("expected error for format without tokens")
	}
	if _, err := New("{s}", map[string]int{"w": 1}); err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if _, err := New("{s}", map[string]int{"s": -1}); err == nil {
		t.Fatal("expected error for negative width")
	}
}

func TestPadsCanonicalOrder(t *testing.T) {
	f := MustNew("{s}", map[string]int{"s": 2, "d": 3, "m": 1})
	want := []Pad{{"d", 3}, {"m", 1}, {"s", 2}}
	if got := f.Pads(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Pads() = %v, want %v", got, want)
	}
	if f.FormatString() != "{s}" {
		t.Fatalf("unexpected format %q", f.FormatString())
	}
}
