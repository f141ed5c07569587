package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Redis is a Backend backed by Redis using github.com/redis/go-redis/v9.
// Entries are serialized to msgpack. Tag invalidation times are kept in a
// single hash per prefix. The caller owns the redis.Client lifecycle.
type Redis struct {
	client   *redis.Client
	onDemand func() bool
	cfg      config
}

var _ Backend = (*Redis)(nil)

// NewRedis returns a new Backend backed by Redis.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	cfg := applyOptions(opts)
	return &Redis{
		client: client,
		cfg:    cfg,
	}
}

func (c *Redis) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.cfg.queryTimeout)
}

func (c *Redis) prefixKey(key string) string {
	if c.cfg.prefix == "" {
		return key
	}
	return c.cfg.prefix + ":" + key
}

func (c *Redis) tagsKey() string {
	return c.prefixKey("__tags__")
}

func (c *Redis) GenerateCacheKey(_ context.Context, invocationKey string) (string, error) {
	return hashCacheKey(invocationKey), nil
}

func (c *Redis) Get(ctx context.Context, cacheKey string, opts GetOptions) (*Lookup, error) {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	data, err := c.client.Get(qctx, c.prefixKey(cacheKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, errors.Wrap(err, "cache: failed to unmarshal entry")
	}
	now := time.Now()
	stale := isStale(e, opts.Revalidate, now)
	if !stale {
		stale, err = c.tagsInvalidated(qctx, e, opts.SoftTags)
		if err != nil {
			return nil, err
		}
	}
	return &Lookup{Entry: e, IsStale: stale}, nil
}

func (c *Redis) Set(ctx context.Context, cacheKey string, entry Entry, _ SetOptions) error {
	entry.StoredAt = time.Now()
	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return errors.Wrap(err, "cache: failed to marshal entry")
	}
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	return c.client.Set(qctx, c.prefixKey(cacheKey), data, c.cfg.expireAfter).Err()
}

func (c *Redis) RevalidateTag(ctx context.Context, tag string) error {
	qctx, cancel := c.queryCtx(ctx)
	defer cancel()
	now := strconv.FormatInt(time.Now().UnixNano(), 10)
	return c.client.HSet(qctx, c.tagsKey(), tag, now).Err()
}

func (c *Redis) IsOnDemandRevalidate() bool {
	if c.onDemand == nil {
		return false
	}
	return c.onDemand()
}

// SetOnDemandRevalidate installs the hook consulted by IsOnDemandRevalidate,
// letting the embedding system signal operator-requested bypass.
func (c *Redis) SetOnDemandRevalidate(f func() bool) {
	c.onDemand = f
}

func (c *Redis) tagsInvalidated(ctx context.Context, e Entry, softTags []string) (bool, error) {
	tags := make([]string, 0, len(e.Tags)+len(softTags))
	tags = append(tags, e.Tags...)
	tags = append(tags, softTags...)
	if len(tags) == 0 {
		return false, nil
	}
	vals, err := c.client.HMGet(ctx, c.tagsKey(), tags...).Result()
	if err != nil {
		return false, err
	}
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		ns, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		if time.Unix(0, ns).After(e.StoredAt) {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op; the caller owns the redis.Client.
func (c *Redis) Close() error {
	return nil
}
