package cache

import (
	"context"
	"time"
)

// LayeredCache reads L1 first, then L2, and writes through both.
type LayeredCache struct {
	l1 *TTLCache
	l2 BytesCache
}

func NewLayeredCache(l1 *TTLCache, l2 BytesCache) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.l1.GetBytes(ctx, key); err == nil {
		return b, nil
	}
	b, err := lc.l2.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	// L1 keeps a promoted copy only briefly; L2 owns the real TTL.
	_ = lc.l1.SetBytes(ctx, key, b, time.Second)
	return b, nil
}

func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.l1.SetBytes(ctx, key, value, ttl)
}

func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
