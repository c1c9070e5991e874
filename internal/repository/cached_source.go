package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	"BizPulse/pkg/cache"
	applogger "BizPulse/pkg/logger"
)

// CachedSource serves record lists from a BytesCache for ttl before reloading
// them from the wrapped source. Cache failures fall through to the source.
type CachedSource struct {
	next   domrepo.RecordSource
	cache  cache.BytesCache
	ttl    time.Duration
	logger *applogger.Logger
}

var _ domrepo.RecordSource = (*CachedSource)(nil)

func NewCachedSource(next domrepo.RecordSource, c cache.BytesCache, ttl time.Duration, logger *applogger.Logger) *CachedSource {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &CachedSource{next: next, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedSource) Customers(ctx context.Context) ([]models.Customer, error) {
	return cached(ctx, s, "customers", s.next.Customers)
}

func (s *CachedSource) Orders(ctx context.Context) ([]models.Order, error) {
	return cached(ctx, s, "orders", s.next.Orders)
}

func (s *CachedSource) Invoices(ctx context.Context) ([]models.Invoice, error) {
	return cached(ctx, s, "invoices", s.next.Invoices)
}

func (s *CachedSource) Products(ctx context.Context) ([]models.Product, error) {
	return cached(ctx, s, "products", s.next.Products)
}

func cached[T any](ctx context.Context, s *CachedSource, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	key = "records:" + key

	b, err := s.cache.GetBytes(ctx, key)
	switch {
	case err == nil:
		var out []T
		if jerr := json.Unmarshal(b, &out); jerr == nil {
			return out, nil
		}
		s.logger.Warn("discarding undecodable cache entry", applogger.String("key", key))
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("record cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.logger.Warn("record cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return out, nil
}
