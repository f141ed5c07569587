package cache

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// KindFetch is the entry kind discriminator written by this module. A
// retrieved entry carrying any other kind is treated as corrupt by callers.
const KindFetch = "FETCH"

// Entry is the persisted record for one cached invocation.
type Entry struct {
	// Kind must equal KindFetch for entries written by this module.
	Kind string `msgpack:"kind"`
	// Body is the msgpack-encoded result of the wrapped function. An empty
	// body decodes to the zero value.
	Body   []byte `msgpack:"body"`
	Status int    `msgpack:"status"`
	URL    string `msgpack:"url"`
	// Revalidate is the freshness window the entry was written with. The
	// writer substitutes FallbackRevalidate when the caller's policy has no
	// numeric window.
	Revalidate time.Duration `msgpack:"revalidate"`
	Tags       []string      `msgpack:"tags"`
	// StoredAt is stamped by the backend on Set.
	StoredAt time.Time `msgpack:"storedAt"`
}

// Lookup is the result of a backend Get for a present entry.
type Lookup struct {
	Entry Entry
	// IsStale reports that the entry's freshness window has elapsed or one
	// of its tags was invalidated after it was stored.
	IsStale bool
}

// GetOptions carries per-call metadata into a backend lookup.
type GetOptions struct {
	// Kind is the entry kind the caller expects.
	Kind string
	// Revalidate is the caller's freshness policy. When it carries a numeric
	// window it overrides the window the entry was stored with.
	Revalidate Revalidate
	// Tags are the invalidation tags supplied by the call site.
	Tags []string
	// SoftTags are implicit tags derived from the ambient context.
	SoftTags []string
	// CallOrdinal is the per-render (or process-wide standalone) call number,
	// for diagnostics.
	CallOrdinal int
	// Locator is the request path and canonicalized query for diagnostics.
	Locator string
	// IsFallback marks a lookup performed without an ambient context.
	IsFallback bool
}

// SetOptions carries per-call metadata into a backend write.
type SetOptions struct {
	Revalidate  Revalidate
	Tags        []string
	CallOrdinal int
	Locator     string
}

// Backend is the storage engine boundary. Implementations must be safe for
// concurrent use.
type Backend interface {
	// GenerateCacheKey derives the backend storage key for an invocation key.
	GenerateCacheKey(ctx context.Context, invocationKey string) (string, error)

	// Get returns the entry stored under cacheKey along with its staleness,
	// or (nil, nil) when absent.
	Get(ctx context.Context, cacheKey string, opts GetOptions) (*Lookup, error)

	// Set stores an entry under cacheKey, stamping its StoredAt.
	Set(ctx context.Context, cacheKey string, entry Entry, opts SetOptions) error

	// RevalidateTag marks a tag invalidated; entries stored before the mark
	// that carry the tag are reported stale by subsequent Gets.
	RevalidateTag(ctx context.Context, tag string) error

	// IsOnDemandRevalidate reports that an operator has requested cache reads
	// be bypassed regardless of staleness.
	IsOnDemandRevalidate() bool
}

// isStale applies the caller's revalidate policy to a stored entry. A never
// policy wins over any elapsed time. Tag invalidation is checked separately
// by each backend.
func isStale(e Entry, policy Revalidate, now time.Time) bool {
	if policy.Never() {
		return false
	}
	window := e.Revalidate
	if w, ok := policy.Window(); ok {
		window = w
	}
	return window > 0 && now.Sub(e.StoredAt) > window
}

// DefaultFallbackRevalidate is the freshness window written for entries whose
// policy has no numeric window (never or unset). One year, mirroring "cache
// forever" semantics while keeping entries evictable.
const DefaultFallbackRevalidate = 365 * 24 * time.Hour

var (
	fallbackOnce       sync.Once
	fallbackRevalidate time.Duration
)

// FallbackRevalidate returns the window substituted for non-numeric policies.
// Overridable via the SWRCACHE_FALLBACK_REVALIDATE env var, which accepts
// day suffixes such as "30d".
func FallbackRevalidate() time.Duration {
	fallbackOnce.Do(func() {
		fallbackRevalidate = DefaultFallbackRevalidate
		if v := os.Getenv("SWRCACHE_FALLBACK_REVALIDATE"); v != "" {
			if d, err := str2duration.ParseDuration(v); err == nil && d > 0 {
				fallbackRevalidate = d
			}
		}
	})
	return fallbackRevalidate
}

// DefaultQueryTimeout is the per-operation timeout for backends that perform
// I/O. Prevents indefinite hangs on slow or unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a backend implementation.
type config struct {
	queryTimeout time.Duration
	expiryCheck  time.Duration
	expireAfter  time.Duration
	prefix       string
}

// Option configures a Backend implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		queryTimeout: DefaultQueryTimeout,
		expiryCheck:  time.Minute,
		expireAfter:  FallbackRevalidate(),
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed backends.
// Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup in
// the in-memory backend. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithExpireAfter sets the hard eviction horizon for stored entries. Stale
// entries younger than this stay available for stale-while-revalidate reads.
// Defaults to FallbackRevalidate.
func WithExpireAfter(d time.Duration) Option {
	return func(c *config) { c.expireAfter = d }
}

// WithPrefix sets the key prefix for namespacing cache keys.
// Applies to the Redis backend. Defaults to empty (no prefix).
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}
