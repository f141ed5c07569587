package swr

import (
	"context"

	"github.com/bjarneo/swrcache/scope"
)

// runIsolated executes the wrapped function under a sub-context whose store
// forces nested cacheable calls to bypass caching, so a revalidation is
// never satisfied by stale nested data. With an ambient store the sub-store
// is a clone sharing the cumulative policy state; in standalone mode a
// minimal store is fabricated with the same flags.
func runIsolated[T any](ctx context.Context, st *scope.Store, fn Func[T], args []any) (T, error) {
	var sub *scope.Store
	if st != nil {
		sub = st.Clone()
	} else {
		sub = scope.NewStore()
		sub.Route = "/"
	}
	sub.FetchCache = scope.ModeForceNoStore
	sub.IsCacheCallback = true
	return fn(scope.With(ctx, sub), args...)
}
