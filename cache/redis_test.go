package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...Option) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, opts...)
}

func TestRedisMissOnEmpty(t *testing.T) {
	c := newTestRedis(t, WithPrefix("test"))
	lookup, err := c.Get(context.Background(), "nope", GetOptions{})
	assert.NoError(t, err)
	assert.Nil(t, lookup)
}

func TestRedisSetGet(t *testing.T) {
	c := newTestRedis(t, WithPrefix("test"))
	ctx := context.Background()
	entry := Entry{
		Kind:       KindFetch,
		Body:       []byte("body"),
		Status:     200,
		URL:        "/things",
		Revalidate: time.Minute,
		Tags:       []string{"things"},
	}
	require.NoError(t, c.Set(ctx, "key", entry, SetOptions{}))

	lookup, err := c.Get(ctx, "key", GetOptions{Kind: KindFetch})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.False(t, lookup.IsStale)
	assert.Equal(t, KindFetch, lookup.Entry.Kind)
	assert.Equal(t, []byte("body"), lookup.Entry.Body)
	assert.Equal(t, []string{"things"}, lookup.Entry.Tags)
	assert.False(t, lookup.Entry.StoredAt.IsZero())
}

func TestRedisStaleness(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", Entry{Kind: KindFetch, Revalidate: 20 * time.Millisecond}, SetOptions{}))

	lookup, err := c.Get(ctx, "key", GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.False(t, lookup.IsStale)

	time.Sleep(30 * time.Millisecond)
	lookup, err = c.Get(ctx, "key", GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.True(t, lookup.IsStale)

	// A never policy still reads the entry as fresh.
	lookup, err = c.Get(ctx, "key", GetOptions{Revalidate: RevalidateNever()})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.False(t, lookup.IsStale)
}

func TestRedisTagInvalidation(t *testing.T) {
	c := newTestRedis(t, WithPrefix("test"))
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", Entry{Kind: KindFetch, Revalidate: time.Hour, Tags: []string{"users"}}, SetOptions{}))

	time.Sleep(time.Millisecond)
	require.NoError(t, c.RevalidateTag(ctx, "users"))

	lookup, err := c.Get(ctx, "key", GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.True(t, lookup.IsStale)
}

func TestRedisSoftTagInvalidation(t *testing.T) {
	c := newTestRedis(t, WithPrefix("test"))
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "key", Entry{Kind: KindFetch, Revalidate: time.Hour}, SetOptions{}))

	time.Sleep(time.Millisecond)
	require.NoError(t, c.RevalidateTag(ctx, "/route"))

	lookup, err := c.Get(ctx, "key", GetOptions{SoftTags: []string{"/route"}})
	require.NoError(t, err)
	require.NotNil(t, lookup)
	assert.True(t, lookup.IsStale)
}

func TestRedisPrefixNamespacing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	a := NewRedis(client, WithPrefix("a"))
	b := NewRedis(client, WithPrefix("b"))
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "key", Entry{Kind: KindFetch, Revalidate: time.Minute}, SetOptions{}))
	lookup, err := b.Get(ctx, "key", GetOptions{})
	assert.NoError(t, err)
	assert.Nil(t, lookup)
}

func TestRedisOnDemandRevalidateHook(t *testing.T) {
	c := newTestRedis(t)
	assert.False(t, c.IsOnDemandRevalidate())
	enabled := true
	c.SetOnDemandRevalidate(func() bool { return enabled })
	assert.True(t, c.IsOnDemandRevalidate())
	enabled = false
	assert.False(t, c.IsOnDemandRevalidate())
}
