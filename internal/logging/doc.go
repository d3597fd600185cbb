// Package logging assembles structured slog loggers and formatting helpers used
// across countdown packages.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so a render request can tag every log
// line with its request ID. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging
