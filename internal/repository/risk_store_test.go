package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	"BizPulse/pkg/docstore"
)

var storeNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return storeNow }

func newRisk(id string, typ models.RiskType, age time.Duration) models.Risk {
	return models.Risk{
		RiskID:      id,
		RiskType:    typ,
		Description: "test",
		Severity:    models.SeverityMedium,
		Timestamp:   storeNow.Add(-age),
		Status:      models.RiskStatusActive,
		Metrics:     map[string]float64{"x": 1},
	}
}

type failingDoc struct {
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (d *failingDoc) Load(context.Context) ([]byte, error) {
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	if d.data == nil {
		return nil, docstore.ErrNotFound
	}
	return d.data, nil
}

func (d *failingDoc) Save(_ context.Context, data []byte) error {
	d.saves++
	if d.saveErr != nil {
		return d.saveErr
	}
	d.data = data
	return nil
}

func TestRiskStoreAppendDoesNotDedupByType(t *testing.T) {
	ctx := context.Background()
	s := NewRiskStore(docstore.NewMemoryBackend().Document("risks"), nil, WithStoreClock(fixedClock))

	require.NoError(t, s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeRevenue, time.Hour)}))
	require.NoError(t, s.Append(ctx, []models.Risk{newRisk("b", models.RiskTypeRevenue, 0)}))

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].RiskID)
	assert.Equal(t, "b", active[1].RiskID)
}

func TestRiskStoreRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	doc := &failingDoc{}
	s := NewRiskStore(doc, nil)

	require.NoError(t, s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeRevenue, 0)}))
	err := s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeCustomer, 0)})
	require.ErrorIs(t, err, domrepo.ErrDuplicateRiskID)

	err = s.Append(ctx, []models.Risk{newRisk("b", models.RiskTypeCustomer, 0), newRisk("b", models.RiskTypeCustomer, 0)})
	require.ErrorIs(t, err, domrepo.ErrDuplicateRiskID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, doc.saves)
}

func TestRiskStoreResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	doc := &failingDoc{}
	s := NewRiskStore(doc, nil, WithStoreClock(fixedClock))
	require.NoError(t, s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeRevenue, 0)}))

	resolved, err := s.Resolve(ctx, "a", "")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, models.RiskStatusResolved, resolved[0].Status)
	assert.Equal(t, models.ManualResolutionReason, resolved[0].ResolutionReason)
	require.NotNil(t, resolved[0].ResolvedAt)
	assert.True(t, resolved[0].ResolvedAt.Equal(storeNow))

	savesAfterFirst := doc.saves
	again, err := s.Resolve(ctx, "a", "second attempt")
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, savesAfterFirst, doc.saves)

	unknown, err := s.Resolve(ctx, "missing", "")
	require.NoError(t, err)
	assert.Empty(t, unknown)

	hist, err := s.ListHistorical(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, models.ManualResolutionReason, hist[0].ResolutionReason)
}

func TestRiskStoreResolveStale(t *testing.T) {
	ctx := context.Background()
	s := NewRiskStore(docstore.NewMemoryBackend().Document("risks"), nil, WithStoreClock(fixedClock))
	require.NoError(t, s.Append(ctx, []models.Risk{
		newRisk("old", models.RiskTypeRevenue, 49*time.Hour),
		newRisk("young", models.RiskTypeRevenue, 10*time.Hour),
		newRisk("flagged", models.RiskTypeCustomer, 72*time.Hour),
	}))

	resolved, err := s.ResolveStale(ctx, map[models.RiskType]bool{models.RiskTypeCustomer: true}, 48*time.Hour)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "old", resolved[0].RiskID)
	assert.Equal(t, models.AutoResolutionReason, resolved[0].ResolutionReason)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	var ids []string
	for _, r := range active {
		ids = append(ids, r.RiskID)
	}
	assert.Equal(t, []string{"young", "flagged"}, ids)
}

func TestRiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := docstore.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	first := NewRiskStore(backend.Document("risks"), nil, WithStoreClock(fixedClock))
	in := newRisk("REVENUE_1", models.RiskTypeRevenue, time.Hour)
	in.Metrics = map[string]float64{"revenue_change_pct": -18}
	require.NoError(t, first.Append(ctx, []models.Risk{in}))
	_, err = first.Resolve(ctx, "REVENUE_1", "handled")
	require.NoError(t, err)

	second := NewRiskStore(backend.Document("risks"), nil)
	all, err := second.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, in.RiskID, got.RiskID)
	assert.Equal(t, in.Metrics, got.Metrics)
	assert.True(t, in.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, models.RiskStatusResolved, got.Status)
	assert.Equal(t, "handled", got.ResolutionReason)
}

func TestRiskStoreCorruptDocumentReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewRiskStore(&failingDoc{data: []byte("{not json")}, nil)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeRevenue, 0)}))
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRiskStorePropagatesIOErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	s := NewRiskStore(&failingDoc{saveErr: boom}, nil)
	err := s.Append(ctx, []models.Risk{newRisk("a", models.RiskTypeRevenue, 0)})
	require.ErrorIs(t, err, boom)

	s = NewRiskStore(&failingDoc{loadErr: boom}, nil)
	_, err = s.ListActive(ctx)
	require.ErrorIs(t, err, boom)
}
