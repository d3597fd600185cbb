// Package container encodes a countdown animation into an animated image file.
package container

import (
	"fmt"
	"io"
	"strings"

	"countdown/internal/countdown"
)

// Encoder writes an animation in one container format.
type Encoder interface {
	Name() string
	Extension() string
	ContentType() string
	Encode(w io.Writer, anim countdown.Animation) error
}

// Names lists the supported formats.
func Names() []string {
	return []string{"gif", "apng"}
}

// ByName returns the encoder for a format name.
func ByName(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gif":
		return GIF{}, nil
	case "apng", "png":
		return APNG{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected one of %s)", name, strings.Join(Names(), ", "))
	}
}

func checkAnimation(anim countdown.Animation) error {
	if len(anim.Frames) == 0 {
		return fmt.Errorf("animation has no frames")
	}
	for i, f := range anim.Frames {
		if f.Image == nil {
			return fmt.Errorf("frame %d has no image", i)
		}
	}
	return nil
}
