package framecache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"countdown/internal/logging"
)

// ErrNotFound reports a missing or expired entry.
var ErrNotFound = errors.New("framecache: entry not found")

// KeySeparator joins fingerprint and seconds. It is outside the hex alphabet.
const KeySeparator = "_"

// Entry is one encoded frame with its expiry.
type Entry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Store is the external key/value contract. Implementations must make a Save
// visible atomically: a concurrent Get sees the old value, the new value, or
// ErrNotFound, never a partial write.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, entry Entry) error
}

// Stats describes store usage for maintenance commands.
type Stats struct {
	Backend      string `json:"backend"`
	Location     string `json:"location,omitempty"`
	Entries      int    `json:"entries"`
	Expired      int    `json:"expired"`
	TotalBytes   int64  `json:"total_bytes"`
	Capacity     int    `json:"capacity,omitempty"`
	FreeBytes    uint64 `json:"free_bytes,omitempty"`
	TotalFSBytes uint64 `json:"total_fs_bytes,omitempty"`
}

// Maintainer is implemented by stores that can report usage and drop expired entries.
type Maintainer interface {
	Stats(ctx context.Context) (Stats, error)
	Prune(ctx context.Context, now time.Time) (int, error)
}

// Adapter is the frame cache as seen by the renderer.
type Adapter interface {
	Enabled() bool
	Key(seconds int) string
	Has(ctx context.Context, seconds int) bool
	Get(ctx context.Context, seconds int) ([]byte, error)
	Put(ctx context.Context, seconds int, data []byte) bool
}

// Key builds the cache key for a fingerprint and seconds-remaining value.
// Negative seconds are clamped to zero.
func Key(fingerprint string, seconds int) string {
	return fingerprint + KeySeparator + strconv.Itoa(max(0, seconds))
}

// ExpiresAt returns the expiry for a frame: now + seconds + 1s.
func ExpiresAt(now time.Time, seconds int) time.Time {
	return now.Add(time.Duration(max(0, seconds)+1) * time.Second)
}

// New returns an active adapter over store, or a Nop adapter when store is nil.
func New(store Store, fingerprint string, now time.Time, logger *slog.Logger) Adapter {
	if store == nil {
		return Nop{fingerprint: fingerprint}
	}
	return &active{
		store:       store,
		fingerprint: fingerprint,
		now:         now,
		logger:      logging.NewComponentLogger(logger, "framecache"),
	}
}

type active struct {
	store       Store
	fingerprint string
	now         time.Time
	logger      *slog.Logger
}

func (a *active) Enabled() bool { return true }

func (a *active) Key(seconds int) string { return Key(a.fingerprint, seconds) }

func (a *active) Has(ctx context.Context, seconds int) bool {
	key := a.Key(seconds)
	ok, err := a.store.Has(ctx, key)
	if err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, a.logger), "frame cache lookup failed",
			"framecache_has_failed",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "frame will be rendered instead of read from cache"))
		return false
	}
	return ok
}

func (a *active) Get(ctx context.Context, seconds int) ([]byte, error) {
	key := a.Key(seconds)
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.WarnWithContext(ctx, logging.WithContext(ctx, a.logger), "frame cache read failed",
				"framecache_get_failed",
				logging.String(logging.FieldCacheKey, key),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the cache backend"),
				logging.String(logging.FieldImpact, "frame will be rendered instead of read from cache"))
		}
		return nil, err
	}
	return data, nil
}

func (a *active) Put(ctx context.Context, seconds int, data []byte) bool {
	entry := Entry{
		Key:       a.Key(seconds),
		Value:     data,
		ExpiresAt: ExpiresAt(a.now, seconds),
	}
	if err := a.store.Save(ctx, entry); err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, a.logger), "frame cache write failed",
			"framecache_put_failed",
			logging.String(logging.FieldCacheKey, entry.Key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the cache backend"),
			logging.String(logging.FieldImpact, "frame will be rendered again next time"))
		return false
	}
	return true
}

// Nop is the adapter used when caching is disabled.
type Nop struct {
	fingerprint string
}

func (Nop) Enabled() bool { return false }

func (n Nop) Key(seconds int) string { return Key(n.fingerprint, seconds) }

func (Nop) Has(context.Context, int) bool { return false }

func (Nop) Get(context.Context, int) ([]byte, error) { return nil, ErrNotFound }

func (Nop) Put(context.Context, int, []byte) bool { return false }
