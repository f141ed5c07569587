package swr

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/bjarneo/swrcache/cache"
	"github.com/bjarneo/swrcache/scope"
)

// ErrNoBackend is returned when neither the ambient store nor the
// process-global registration provides a cache backend. Fatal; there is
// nothing to degrade to.
var ErrNoBackend = errors.New("swr: no cache backend available (set scope.Store.Backend or register one with cache.SetDefault)")

// resolution is the outcome of locating the ambient context and backend for
// one invocation. store is nil in standalone mode.
type resolution struct {
	store   *scope.Store
	backend cache.Backend
}

func resolve(ctx context.Context) (resolution, error) {
	st, ok := scope.From(ctx)
	var backend cache.Backend
	if ok && st.Backend != nil {
		backend = st.Backend
	} else {
		backend = cache.Default()
	}
	if backend == nil {
		return resolution{}, errors.WithStack(ErrNoBackend)
	}
	if !ok {
		st = nil
	}
	return resolution{store: st, backend: backend}, nil
}

// requestLocator returns a best-effort request identifier for diagnostics
// and backend metadata: the request path plus the canonicalized query when a
// request is active, else the render's route, else "".
func requestLocator(st *scope.Store) string {
	if st == nil {
		return ""
	}
	if st.Path == "" {
		return st.Route
	}
	if q := canonicalQuery(st.Query); q != "" {
		return st.Path + "?" + q
	}
	return st.Path
}

// canonicalQuery renders query values with keys in ordinal order so that
// logically equal requests produce identical locators.
func canonicalQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		for _, v := range q[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	return sb.String()
}
