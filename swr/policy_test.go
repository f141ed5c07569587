package swr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bjarneo/swrcache/cache"
)

func TestMergeRevalidatePrecedence(t *testing.T) {
	unset := cache.Revalidate{}
	never := cache.RevalidateNever()
	short := cache.RevalidateAfter(10 * time.Second)
	long := cache.RevalidateAfter(time.Hour)

	// First numeric value always applies.
	assert.Equal(t, short, mergeRevalidate(unset, short))

	// A shorter window wins; a longer one never widens the policy.
	assert.Equal(t, short, mergeRevalidate(long, short))
	assert.Equal(t, short, mergeRevalidate(short, long))

	// Never applies only while the policy is unset.
	assert.Equal(t, never, mergeRevalidate(unset, never))
	assert.Equal(t, short, mergeRevalidate(short, never))
	assert.Equal(t, never, mergeRevalidate(never, never))

	// A numeric value overrides an earlier never.
	assert.Equal(t, short, mergeRevalidate(never, short))

	// An unset call leaves the policy alone.
	assert.Equal(t, short, mergeRevalidate(short, unset))
	assert.Equal(t, unset, mergeRevalidate(unset, unset))
}

func TestMergeTagsSetSemantics(t *testing.T) {
	tags := mergeTags(nil, []string{"a"})
	tags = mergeTags(tags, []string{"a", "b"})
	tags = mergeTags(tags, []string{"b", "c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, tags)
}
