// Package swr memoizes asynchronous functions with stale-while-revalidate
// semantics on top of a pluggable cache backend.
//
// [Wrap] takes a function, optional static key parts, and options, and
// returns a function of the same shape whose results are cached under a key
// derived from the function's identity and its call arguments:
//
//	getUser, err := swr.Wrap(func(ctx context.Context, args ...any) (*User, error) {
//	    return loadUser(ctx, args[0].(string))
//	}, []string{"user"}, swr.WithRevalidate(5*time.Minute), swr.WithTags("users"))
//
// A fresh cache hit returns immediately without calling the function. A
// stale hit still returns immediately, and — when running inside an ambient
// [scope.Store] — schedules a background revalidation whose result replaces
// the entry for future callers; background failures are logged and never
// affect the value already returned. Missing or structurally invalid entries
// compute synchronously and persist before returning.
//
// # Scoped and standalone execution
//
// Inside a render or request, the enclosing machinery installs a
// [scope.Store] on the context. Every wrapped call merges its revalidate and
// tag options into the store's cumulative policy (shorter windows win, tags
// accumulate as a set) and registers background refreshes on the store so
// they can be drained before the render finishes. Outside any store, calls
// use the backend registered with [cache.SetDefault], and stale entries
// recompute synchronously since there is nothing to drain a background task.
//
// The wrapped function always runs under a sub-context that forces nested
// cacheable calls to bypass caching, so a revalidation never reads stale
// nested data.
//
// Two calls observing the same stale entry may both schedule a refresh;
// both compute the same logical result and the last write wins.
package swr
