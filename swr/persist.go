package swr

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bjarneo/swrcache/cache"
)

// persistResult encodes a freshly computed result and writes it to the
// backend. When the revalidate policy carries no numeric window the entry is
// stored with the long fallback window.
func persistResult[T any](ctx context.Context, backend cache.Backend, cacheKey string, result T, rev cache.Revalidate, tags []string, ordinal int, locator string) error {
	body, err := msgpack.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "swr: failed to encode result")
	}
	window := cache.FallbackRevalidate()
	if w, ok := rev.Window(); ok {
		window = w
	}
	entry := cache.Entry{
		Kind:       cache.KindFetch,
		Body:       body,
		Status:     http.StatusOK,
		URL:        locator,
		Revalidate: window,
		Tags:       tags,
	}
	return backend.Set(ctx, cacheKey, entry, cache.SetOptions{
		Revalidate:  rev,
		Tags:        tags,
		CallOrdinal: ordinal,
		Locator:     locator,
	})
}

// decodeBody deserializes an entry body into the result type. An absent body
// decodes to the zero value.
func decodeBody[T any](body []byte) (T, error) {
	var out T
	if len(body) == 0 {
		return out, nil
	}
	if err := msgpack.Unmarshal(body, &out); err != nil {
		var zero T
		return zero, errors.Wrap(err, "swr: failed to decode cached result")
	}
	return out, nil
}
