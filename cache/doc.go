// Package cache defines the storage backend boundary for the swr memoization
// layer, plus two implementations.
//
// # Backend Interface
//
// The [Backend] interface covers four operations: [Backend.GenerateCacheKey],
// [Backend.Get], [Backend.Set], and [Backend.RevalidateTag], plus the
// [Backend.IsOnDemandRevalidate] capability flag. Get reports staleness
// alongside the entry so callers can serve stale data while revalidating in
// the background; it never deletes a merely-stale entry.
//
// Staleness is decided from the caller's [Revalidate] policy when it carries
// a numeric window, otherwise from the window the entry was stored with. A
// never policy is never stale. Invalidating a tag with RevalidateTag marks
// every earlier-stored entry carrying that tag (or looked up under it as a
// soft tag) stale on subsequent reads.
//
// # Implementations
//
//   - [NewInMemory] — In-process map guarded by a mutex. Values are stored
//     as-is with no serialization. A background goroutine evicts entries past
//     the hard expiry horizon. Lost on process restart.
//
//   - [NewRedis] — Backed by Redis using [github.com/redis/go-redis/v9].
//     Entries are serialized to msgpack. Tag invalidation timestamps live in
//     one Redis hash per key prefix, so invalidation is visible across
//     processes sharing the prefix. Each operation uses a per-query timeout.
//     The caller owns the [redis.Client] lifecycle.
//
// # Fallback Registration
//
// [SetDefault] registers a process-global Backend consumed by cache-wrapped
// calls running outside any ambient context.
package cache
