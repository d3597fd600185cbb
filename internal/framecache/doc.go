// Package framecache memoizes rendered countdown frames in an injected
// key/value store.
//
// The Adapter owns the cache naming and expiry policy: keys are
// "<fingerprint>_<seconds>" and entries expire one second after the frame's
// moment has passed, measured from the countdown's reference time. Callers never
// build keys or expiry timestamps themselves.
//
// Two adapters exist. New returns an active adapter when a Store is supplied and
// a Nop adapter otherwise; the Nop adapter reports every lookup as a miss and
// never touches a store. Store failures are never fatal: reads degrade to a
// miss and writes report false, because the cache is purely an optimization.
//
// Store implementations live in subpackages:
//   - memstore: bounded in-process LRU
//   - sqlitestore: SQLite database shared across runs
//   - diskstore: one file per frame under a directory
package framecache
