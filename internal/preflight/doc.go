// Package preflight provides readiness checks for the files and directories
// a render depends on.
//
// The CLI "countdown doctor" command prints every result, and "countdown
// render" runs the same checks and refuses to start when one fails, so a bad
// font path or an unwritable cache is reported before any frame is drawn.
//
// Checks for optional inputs are skipped when the input is not configured.
package preflight
