package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// InMemory is an in-process Backend guarded by a mutex. Entries are stored
// as-is with no serialization. Lost on process restart.
type InMemory struct {
	ctx            context.Context
	cancel         context.CancelFunc
	entries        map[string]Entry
	tagInvalidated map[string]time.Time
	mutex          sync.Mutex
	waitGroup      sync.WaitGroup
	once           sync.Once
	onDemand       atomic.Bool
	cfg            config
}

var _ Backend = (*InMemory)(nil)

// NewInMemory returns a new in-memory Backend. A background goroutine evicts
// entries past the configured hard expiry horizon until Close is called or
// parent is cancelled.
func NewInMemory(parent context.Context, opts ...Option) *InMemory {
	cfg := applyOptions(opts)
	ctx, cancel := context.WithCancel(parent)
	c := &InMemory{
		ctx:            ctx,
		cancel:         cancel,
		entries:        make(map[string]Entry),
		tagInvalidated: make(map[string]time.Time),
		cfg:            cfg,
	}
	c.waitGroup.Add(1)
	go c.run()
	return c
}

func (c *InMemory) GenerateCacheKey(_ context.Context, invocationKey string) (string, error) {
	return hashCacheKey(invocationKey), nil
}

func (c *InMemory) Get(_ context.Context, cacheKey string, opts GetOptions) (*Lookup, error) {
	now := time.Now()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	e, ok := c.entries[cacheKey]
	if !ok {
		return nil, nil
	}
	if now.Sub(e.StoredAt) > c.cfg.expireAfter {
		delete(c.entries, cacheKey)
		return nil, nil
	}
	stale := isStale(e, opts.Revalidate, now) || c.tagsInvalidatedLocked(e, opts.SoftTags)
	return &Lookup{Entry: e, IsStale: stale}, nil
}

func (c *InMemory) Set(_ context.Context, cacheKey string, entry Entry, _ SetOptions) error {
	entry.StoredAt = time.Now()
	entry.Tags = append([]string(nil), entry.Tags...)
	c.mutex.Lock()
	c.entries[cacheKey] = entry
	c.mutex.Unlock()
	return nil
}

func (c *InMemory) RevalidateTag(_ context.Context, tag string) error {
	c.mutex.Lock()
	c.tagInvalidated[tag] = time.Now()
	c.mutex.Unlock()
	return nil
}

func (c *InMemory) IsOnDemandRevalidate() bool {
	return c.onDemand.Load()
}

// SetOnDemandRevalidate toggles the operator bypass flag reported by
// IsOnDemandRevalidate.
func (c *InMemory) SetOnDemandRevalidate(v bool) {
	c.onDemand.Store(v)
}

// tagsInvalidatedLocked reports whether any of the entry's tags, or any of
// the caller's soft tags, was invalidated after the entry was stored.
func (c *InMemory) tagsInvalidatedLocked(e Entry, softTags []string) bool {
	for _, tag := range e.Tags {
		if at, ok := c.tagInvalidated[tag]; ok && at.After(e.StoredAt) {
			return true
		}
	}
	for _, tag := range softTags {
		if at, ok := c.tagInvalidated[tag]; ok && at.After(e.StoredAt) {
			return true
		}
	}
	return false
}

func (c *InMemory) Close() error {
	c.once.Do(func() {
		c.cancel()
		c.waitGroup.Wait()
	})
	return nil
}

func (c *InMemory) run() {
	defer c.waitGroup.Done()
	ticker := time.NewTicker(c.cfg.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.mutex.Lock()
			for key, e := range c.entries {
				if now.Sub(e.StoredAt) > c.cfg.expireAfter {
					delete(c.entries, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}
