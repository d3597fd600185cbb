// Package fingerprint computes deterministic identifiers for countdown render
// configurations.
//
// The fingerprint is a SHA-256 hash over every input that can change rendered
// pixels: target instant and zone, default text, formatter format and pads,
// background size and sampled color, and font family, size, and color. The
// reference "now" and the runtime window are excluded because they only choose
// which frames are rendered, never what a frame looks like. The hex digest
// doubles as the frame cache namespace.
//
// DefaultText is hashed in Unicode NFC; renderers must draw the NFC form too
// so equal fingerprints keep meaning equal pixels.
//
// This package has no countdown-specific dependencies; callers sample the
// background and describe the font before calling Compute.
package fingerprint
