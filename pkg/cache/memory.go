package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time
}

// TTLCache is an in-process BytesCache bounded by maxSize entries.
type TTLCache struct {
	mu      sync.RWMutex
	m       map[string]entry
	maxSize int
	now     func() time.Time
}

type MemoryOption func(*TTLCache)

func WithMaxSize(n int) MemoryOption {
	return func(c *TTLCache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *TTLCache) { c.now = now }
}

func NewTTLCache(opts ...MemoryOption) *TTLCache {
	c := &TTLCache{
		m:       make(map[string]entry),
		maxSize: 1000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.exp.IsZero() && c.now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.v, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[key]; !ok && len(c.m) >= c.maxSize {
		c.evict()
	}
	c.m[key] = entry{v: value, exp: exp}
	return nil
}

// evict drops expired entries, or the one closest to expiry when none are.
// Caller holds mu.
func (c *TTLCache) evict() {
	now := c.now()
	var (
		victim string
		soon   time.Time
	)
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			delete(c.m, k)
			continue
		}
		if victim == "" || (!e.exp.IsZero() && (soon.IsZero() || e.exp.Before(soon))) {
			victim, soon = k, e.exp
		}
	}
	if len(c.m) >= c.maxSize && victim != "" {
		delete(c.m, victim)
	}
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *TTLCache) Close() error { return nil }
