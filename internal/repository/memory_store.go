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

const (
	defaultInsightLimit = 100
	defaultRecentLimit  = 10
)

type memoryDocument struct {
	Preferences map[string]interface{} `json:"preferences"`
	Insights    []models.InsightEntry  `json:"insights"`
}

// DocumentMemoryStore persists preferences and a bounded insight log as one document.
type DocumentMemoryStore struct {
	mu     sync.Mutex
	doc    docstore.Store
	logger *applogger.Logger
	now    func() time.Time
	limit  int
}

var _ domrepo.MemoryStore = (*DocumentMemoryStore)(nil)

func NewMemoryStore(doc docstore.Store, logger *applogger.Logger, opts ...StoreOption) *DocumentMemoryStore {
	if logger == nil {
		logger = applogger.Nop()
	}
	o := buildStoreOptions(opts)
	return &DocumentMemoryStore{doc: doc, logger: logger, now: o.now, limit: o.insightLimit}
}

func (s *DocumentMemoryStore) Preferences(ctx context.Context) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return m.Preferences, nil
}

func (s *DocumentMemoryStore) SetPreference(ctx context.Context, key string, value interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	m.Preferences[key] = value
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	return m.Preferences, nil
}

// LogInsight appends an entry and drops the oldest entries beyond the configured limit.
func (s *DocumentMemoryStore) LogInsight(ctx context.Context, domain string, payload interface{}) (models.InsightEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.InsightEntry{}, fmt.Errorf("encode insight: %w", err)
	}
	entry := models.InsightEntry{Timestamp: s.now().UTC(), Domain: domain, Payload: raw}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return models.InsightEntry{}, err
	}
	m.Insights = append(m.Insights, entry)
	if over := len(m.Insights) - s.limit; over > 0 {
		m.Insights = append([]models.InsightEntry(nil), m.Insights[over:]...)
	}
	if err := s.save(ctx, m); err != nil {
		return models.InsightEntry{}, err
	}
	return entry, nil
}

// RecentInsights returns up to limit entries, newest first.
func (s *DocumentMemoryStore) RecentInsights(ctx context.Context, limit int) ([]models.InsightEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	n := len(m.Insights)
	if limit > n {
		limit = n
	}
	out := make([]models.InsightEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.Insights[i])
	}
	return out, nil
}

func (s *DocumentMemoryStore) load(ctx context.Context) (memoryDocument, error) {
	empty := memoryDocument{Preferences: map[string]interface{}{}}
	data, err := s.doc.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return memoryDocument{}, fmt.Errorf("load memory: %w", err)
	}
	var m memoryDocument
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("memory store unreadable, treating as empty", applogger.Error(err))
		return empty, nil
	}
	if m.Preferences == nil {
		m.Preferences = map[string]interface{}{}
	}
	return m, nil
}

func (s *DocumentMemoryStore) save(ctx context.Context, m memoryDocument) error {
	if m.Insights == nil {
		m.Insights = []models.InsightEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode memory: %w", err)
	}
	if err := s.doc.Save(ctx, data); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}
