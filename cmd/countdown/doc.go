// Package main hosts the countdown CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds a logger from it,
// and hands off to the internal packages: render drives the countdown
// pipeline and a container encoder, cache inspects and prunes the frame
// store, config scaffolds and prints configuration, and doctor runs the
// preflight checks.
//
// Keep this package lean: add behaviour to the internal packages first and
// surface it here through commands or flags.
package main
