// Package config loads, normalizes, and validates countdown configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COUNTDOWN_TARGET. The Config type centralizes every knob the renderer and CLI
// need: the countdown window, formatter, background, font, cache backend, and
// logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
