package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// hashCacheKey maps an invocation key onto a fixed-width storage key.
func hashCacheKey(invocationKey string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(invocationKey))
}
