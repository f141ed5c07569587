package swr

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/bjarneo/swrcache/cache"
	"github.com/bjarneo/swrcache/logger"
	"github.com/bjarneo/swrcache/scope"
)

// Func is the shape of a cacheable function: a context, any arguments, one
// result.
type Func[T any] func(ctx context.Context, args ...any) (T, error)

// standaloneCallOrdinal numbers calls made outside any ambient store, for
// diagnostics. Process lifetime, monotonic, never reset.
var standaloneCallOrdinal atomic.Int64

// Wrap returns a function with the same shape as fn whose results are cached
// under a key derived from fn's identity, keyParts, and the call arguments.
//
// Inside an ambient scope.Store, a stale cache hit is returned immediately
// while a background revalidation refreshes the entry; the call's revalidate
// and tag options are merged into the store's cumulative policy. Outside any
// store, stale or missing entries are recomputed synchronously against the
// process-global default backend.
//
// Configuration errors (a zero or negative revalidate window, an invalid
// tag) are reported here, before the function is ever called.
func Wrap[T any](fn Func[T], keyParts []string, opts ...Option) (Func[T], error) {
	if fn == nil {
		return nil, errors.New("swr: fn is required")
	}
	cfg := applyOptions(opts)
	identity := functionIdentity(fn)
	if w, ok := cfg.revalidate.Window(); ok && w <= 0 {
		return nil, errors.Newf("swr: invalid revalidate %s for %s: must be a positive duration (use WithNoRevalidate for never)", w, identity)
	}
	for _, tag := range cfg.tags {
		if err := cfg.validateTag(tag); err != nil {
			return nil, errors.Wrapf(err, "swr: invalid tag for %s", identity)
		}
	}
	c := &controller[T]{
		fn:         fn,
		fixedKey:   buildFixedKey(identity, keyParts),
		revalidate: cfg.revalidate,
		tags:       cfg.tags,
		log:        cfg.log,
	}
	return c.call, nil
}

// controller drives one wrapped function through the lookup state machine:
// resolve, look up, classify as fresh, stale, missing, or invalid, then
// return, refresh in the background, or compute synchronously.
type controller[T any] struct {
	fn         Func[T]
	fixedKey   string
	revalidate cache.Revalidate
	tags       []string
	log        logger.Logger
}

func (c *controller[T]) call(ctx context.Context, args ...any) (T, error) {
	var zero T
	res, err := resolve(ctx)
	if err != nil {
		return zero, errors.Wrapf(err, "calling %s", c.fixedKey)
	}
	invocationKey, err := buildInvocationKey(c.fixedKey, args)
	if err != nil {
		return zero, err
	}
	cacheKey, err := res.backend.GenerateCacheKey(ctx, invocationKey)
	if err != nil {
		return zero, errors.Wrapf(err, "swr: failed to derive cache key for %s", invocationKey)
	}
	if res.store != nil {
		return c.scoped(ctx, res.store, res.backend, invocationKey, cacheKey, args)
	}
	return c.standalone(ctx, res.backend, invocationKey, cacheKey, args)
}

func (c *controller[T]) scoped(ctx context.Context, st *scope.Store, backend cache.Backend, invocationKey, cacheKey string, args []any) (T, error) {
	var zero T
	applyPolicy(st, c.revalidate, c.tags)
	ordinal := st.NextCallOrdinal()
	locator := requestLocator(st)
	softTags := append([]string(nil), st.SoftTags...)

	bypass := st.FetchCache == scope.ModeForceNoStore ||
		st.IsOnDemandRevalidate ||
		st.IsDraftMode ||
		backend.IsOnDemandRevalidate()

	if !bypass {
		lookup, err := backend.Get(ctx, cacheKey, cache.GetOptions{
			Kind:        cache.KindFetch,
			Revalidate:  c.revalidate,
			Tags:        c.tags,
			SoftTags:    softTags,
			CallOrdinal: ordinal,
			Locator:     locator,
		})
		if err != nil {
			return zero, err
		}
		switch {
		case lookup == nil:
			// missing
		case lookup.Entry.Kind != cache.KindFetch:
			c.log.Warn("cache entry for %s has unexpected kind %q, treating as missing", invocationKey, lookup.Entry.Kind)
		default:
			value, derr := decodeBody[T](lookup.Entry.Body)
			if derr != nil {
				c.log.Warn("cache entry for %s failed to decode, treating as missing: %v", invocationKey, derr)
				break
			}
			if lookup.IsStale && st.FetchCache != scope.ModeForceCache {
				c.refreshInBackground(ctx, st, backend, invocationKey, cacheKey, ordinal, locator, args)
			}
			return value, nil
		}
	}

	value, err := runIsolated(ctx, st, c.fn, args)
	if err != nil {
		return zero, err
	}
	if !st.IsDraftMode {
		if err := persistResult(ctx, backend, cacheKey, value, c.revalidate, c.tags, ordinal, locator); err != nil {
			return zero, err
		}
	}
	return value, nil
}

// refreshInBackground recomputes and persists the entry for a stale hit. The
// task is registered on the store so the render machinery can drain it, and
// detached from the caller's cancellation. Failures are logged, never
// propagated: the caller already has the stale value.
func (c *controller[T]) refreshInBackground(ctx context.Context, st *scope.Store, backend cache.Backend, invocationKey, cacheKey string, ordinal int, locator string, args []any) {
	done := make(chan struct{})
	st.TrackPending(invocationKey, done)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		value, err := runIsolated(bg, st, c.fn, args)
		if err != nil {
			c.log.Error("background revalidation of %s failed: %v", invocationKey, err)
			return
		}
		if err := persistResult(bg, backend, cacheKey, value, c.revalidate, c.tags, ordinal, locator); err != nil {
			c.log.Error("background revalidation of %s failed to persist: %v", invocationKey, err)
		}
	}()
}

// standalone handles calls outside any ambient store: no cumulative policy,
// no background path. Stale, missing, and invalid entries all recompute
// synchronously.
func (c *controller[T]) standalone(ctx context.Context, backend cache.Backend, invocationKey, cacheKey string, args []any) (T, error) {
	var zero T
	ordinal := int(standaloneCallOrdinal.Add(1))

	if !backend.IsOnDemandRevalidate() {
		lookup, err := backend.Get(ctx, cacheKey, cache.GetOptions{
			Kind:        cache.KindFetch,
			Revalidate:  c.revalidate,
			Tags:        c.tags,
			CallOrdinal: ordinal,
			IsFallback:  true,
		})
		if err != nil {
			return zero, err
		}
		switch {
		case lookup == nil:
		case lookup.Entry.Kind != cache.KindFetch:
			c.log.Warn("cache entry for %s has unexpected kind %q, treating as missing", invocationKey, lookup.Entry.Kind)
		case lookup.IsStale:
		default:
			value, derr := decodeBody[T](lookup.Entry.Body)
			if derr != nil {
				c.log.Warn("cache entry for %s failed to decode, treating as missing: %v", invocationKey, derr)
				break
			}
			return value, nil
		}
	}

	value, err := runIsolated[T](ctx, nil, c.fn, args)
	if err != nil {
		return zero, err
	}
	if err := persistResult(ctx, backend, cacheKey, value, c.revalidate, c.tags, ordinal, ""); err != nil {
		return zero, err
	}
	return value, nil
}
