package swr

import (
	"slices"

	"github.com/bjarneo/swrcache/cache"
	"github.com/bjarneo/swrcache/scope"
)

// mergeRevalidate folds one call's revalidate policy into the cumulative
// policy. A numeric window applies when the cumulative value is not numeric,
// or when it is strictly smaller; shorter windows win and a later, larger
// window never loosens the policy. Never applies only while the cumulative
// policy is still unset.
func mergeRevalidate(current, call cache.Revalidate) cache.Revalidate {
	if w, ok := call.Window(); ok {
		if cw, cok := current.Window(); !cok || w < cw {
			return call
		}
		return current
	}
	if call.Never() && current.IsZero() {
		return call
	}
	return current
}

// mergeTags folds one call's tags into the cumulative set without
// introducing duplicates.
func mergeTags(current, add []string) []string {
	for _, tag := range add {
		if !slices.Contains(current, tag) {
			current = append(current, tag)
		}
	}
	return current
}

// applyPolicy merges the call's options into the ambient store's cumulative
// policy in one atomic update.
func applyPolicy(st *scope.Store, rev cache.Revalidate, tags []string) {
	st.UpdatePolicy(func(cur cache.Revalidate, curTags []string) (cache.Revalidate, []string) {
		return mergeRevalidate(cur, rev), mergeTags(curTags, tags)
	})
}
