package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	"BizPulse/pkg/docstore"
	applogger "BizPulse/pkg/logger"
)

// DocumentRiskStore keeps the full risk collection in one document and rewrites it on every change.
type DocumentRiskStore struct {
	mu     sync.Mutex
	doc    docstore.Store
	logger *applogger.Logger
	now    func() time.Time
}

var _ domrepo.RiskStore = (*DocumentRiskStore)(nil)

type StoreOption func(*storeOptions)

type storeOptions struct {
	now          func() time.Time
	insightLimit int
}

// WithStoreClock overrides the clock used for resolution timestamps and ages.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) { o.now = now }
}

// WithInsightLimit caps the insight log kept by the memory store.
func WithInsightLimit(n int) StoreOption {
	return func(o *storeOptions) {
		if n > 0 {
			o.insightLimit = n
		}
	}
}

func buildStoreOptions(opts []StoreOption) storeOptions {
	o := storeOptions{now: time.Now, insightLimit: defaultInsightLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func NewRiskStore(doc docstore.Store, logger *applogger.Logger, opts ...StoreOption) *DocumentRiskStore {
	if logger == nil {
		logger = applogger.Nop()
	}
	o := buildStoreOptions(opts)
	return &DocumentRiskStore{doc: doc, logger: logger, now: o.now}
}

func (s *DocumentRiskStore) Append(ctx context.Context, risks []models.Risk) error {
	if len(risks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(all)+len(risks))
	for _, r := range all {
		seen[r.RiskID] = struct{}{}
	}
	for _, r := range risks {
		if _, dup := seen[r.RiskID]; dup {
			return fmt.Errorf("%w: %s", domrepo.ErrDuplicateRiskID, r.RiskID)
		}
		seen[r.RiskID] = struct{}{}
	}
	return s.save(ctx, append(all, risks...))
}

func (s *DocumentRiskStore) ListActive(ctx context.Context) ([]models.Risk, error) {
	return s.list(ctx, func(r models.Risk) bool { return r.IsActive() })
}

func (s *DocumentRiskStore) ListHistorical(ctx context.Context) ([]models.Risk, error) {
	return s.list(ctx, func(r models.Risk) bool { return !r.IsActive() })
}

func (s *DocumentRiskStore) ListAll(ctx context.Context) ([]models.Risk, error) {
	return s.list(ctx, func(models.Risk) bool { return true })
}

func (s *DocumentRiskStore) Resolve(ctx context.Context, riskID, reason string) ([]models.Risk, error) {
	if reason == "" {
		reason = models.ManualResolutionReason
	}
	return s.mutate(ctx, func(r *models.Risk, now time.Time) bool {
		return r.RiskID == riskID && r.MarkResolved(now, reason)
	})
}

func (s *DocumentRiskStore) ResolveStale(ctx context.Context, activeTypes map[models.RiskType]bool, maxAge time.Duration) ([]models.Risk, error) {
	return s.mutate(ctx, func(r *models.Risk, now time.Time) bool {
		if !r.IsActive() || activeTypes[r.RiskType] || r.Age(now) <= maxAge {
			return false
		}
		return r.MarkResolved(now, models.AutoResolutionReason)
	})
}

// mutate applies fn under the lock and persists only when something changed.
func (s *DocumentRiskStore) mutate(ctx context.Context, fn func(*models.Risk, time.Time) bool) ([]models.Risk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var changed []models.Risk
	for i := range all {
		if fn(&all[i], now) {
			changed = append(changed, all[i])
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := s.save(ctx, all); err != nil {
		return nil, err
	}
	return changed, nil
}

func (s *DocumentRiskStore) list(ctx context.Context, keep func(models.Risk) bool) ([]models.Risk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Risk, 0, len(all))
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *DocumentRiskStore) load(ctx context.Context) ([]models.Risk, error) {
	data, err := s.doc.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load risks: %w", err)
	}
	var risks []models.Risk
	if err := json.Unmarshal(data, &risks); err != nil {
		s.logger.Warn("risk store unreadable, treating as empty", applogger.Error(err))
		return nil, nil
	}
	return risks, nil
}

func (s *DocumentRiskStore) save(ctx context.Context, risks []models.Risk) error {
	if risks == nil {
		risks = []models.Risk{}
	}
	data, err := json.MarshalIndent(risks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode risks: %w", err)
	}
	if err := s.doc.Save(ctx, data); err != nil {
		return fmt.Errorf("save risks: %w", err)
	}
	return nil
}
