package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BizPulse/internal/domain/models"
)

func TestGenerateAndStoreScenario(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	ctx := context.Background()

	risks, err := f.manager.GenerateAndStore(ctx)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, models.RiskTypeRevenue, risks[0].RiskType)
	assert.Equal(t, models.SeverityHigh, risks[0].Severity)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.RiskEventCreated, f.publisher.events[0].EventType)
	assert.NotEmpty(t, f.publisher.events[0].EventID)
}

func TestGenerateAndStoreDoesNotDedup(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	ctx := context.Background()

	_, err := f.manager.GenerateAndStore(ctx)
	require.NoError(t, err)
	_, err = f.manager.GenerateAndStore(ctx)
	require.NoError(t, err)

	active, err := f.manager.ActiveRisks(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, active[0].RiskType, active[1].RiskType)
	assert.NotEqual(t, active[0].RiskID, active[1].RiskID)
}

func TestGenerateAndStoreHealthyAppendsNothing(t *testing.T) {
	f := newManagerFixture(&stubKPIs{})
	risks, err := f.manager.GenerateAndStore(context.Background())
	require.NoError(t, err)
	assert.Empty(t, risks)
	assert.Empty(t, f.publisher.events)
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	f.publisher.err = errPublish

	risks, err := f.manager.GenerateAndStore(context.Background())
	require.NoError(t, err)
	require.Len(t, risks, 1)

	all, err := f.manager.AllRisks(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveTwice(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	ctx := context.Background()
	risks, err := f.manager.GenerateAndStore(ctx)
	require.NoError(t, err)
	id := risks[0].RiskID

	resolved, err := f.manager.Resolve(ctx, id, "")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, models.ManualResolutionReason, resolved[0].ResolutionReason)

	resolved, err = f.manager.Resolve(ctx, id, "")
	require.NoError(t, err)
	assert.Empty(t, resolved)

	hist, err := f.manager.HistoricalRisks(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, models.RiskStatusResolved, hist[0].Status)

	var resolvedEvents int
	for _, ev := range f.publisher.events {
		if ev.EventType == models.RiskEventResolved {
			resolvedEvents++
		}
	}
	assert.Equal(t, 1, resolvedEvents)
}

func TestAutoResolveStaleByAge(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	ctx := context.Background()

	inventoryRisk := func(id string, age time.Duration) models.Risk {
		return models.Risk{
			RiskID:    id,
			RiskType:  models.RiskTypeInventory,
			Severity:  models.SeverityLow,
			Timestamp: testNow.Add(-age),
			Status:    models.RiskStatusActive,
			Metrics:   map[string]float64{},
		}
	}
	require.NoError(t, f.store.Append(ctx, []models.Risk{
		inventoryRisk("inv-49h", 49*time.Hour),
		inventoryRisk("inv-10h", 10*time.Hour),
		{RiskID: "rev-72h", RiskType: models.RiskTypeRevenue, Timestamp: testNow.Add(-72 * time.Hour), Status: models.RiskStatusActive},
	}))

	resolved, err := f.manager.AutoResolveStale(ctx, 48)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "inv-49h", resolved[0].RiskID)
	assert.Equal(t, models.AutoResolutionReason, resolved[0].ResolutionReason)
	require.NotNil(t, resolved[0].ResolvedAt)

	active, err := f.manager.ActiveRisks(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range active {
		ids = append(ids, r.RiskID)
	}
	assert.Equal(t, []string{"inv-10h", "rev-72h"}, ids)
}

func TestOverviewAndAOV(t *testing.T) {
	kpis := scenarioKPIs()
	kpis.fin.AverageOrderValue = 1234.5
	f := newManagerFixture(kpis)
	ctx := context.Background()

	ov := f.manager.Overview(ctx)
	assert.Equal(t, models.HealthCritical, ov.Summary.OverallHealth)
	assert.True(t, ov.Signals.RevenueAlert)
	assert.Equal(t, 1234.5, f.manager.AverageOrderValue(ctx))
}

func TestGenerateAndStoreResumesIDSequence(t *testing.T) {
	f := newManagerFixture(scenarioKPIs())
	ctx := context.Background()

	// A risk left by an earlier process with the next sequence number and the same timestamp.
	next := riskSeq.Load() + 1
	stored := fmt.Sprintf("REVENUE_2025-07-01T08:00:00.000000Z_%d", next)
	require.NoError(t, f.store.Append(ctx, []models.Risk{{
		RiskID:    stored,
		RiskType:  models.RiskTypeRevenue,
		Severity:  models.SeverityHigh,
		Timestamp: testNow,
		Status:    models.RiskStatusActive,
	}}))

	risks, err := f.manager.GenerateAndStore(ctx)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.NotEqual(t, stored, risks[0].RiskID)
	assert.True(t, strings.HasPrefix(risks[0].RiskID, "REVENUE_2025-07-01T08:00:00.000000Z_"))

	all, err := f.manager.AllRisks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResumeSequenceNeverLowersCounter(t *testing.T) {
	before := riskSeq.Load()
	ResumeSequence([]string{"REVENUE_2025-07-01T08:00:00.000000Z_0", "not-an-id", "CASH_FLOW_x_abc"})
	assert.GreaterOrEqual(t, riskSeq.Load(), before)

	ResumeSequence([]string{fmt.Sprintf("INVENTORY_2025-07-01T08:00:00.000000Z_%d", before+500)})
	assert.Equal(t, before+500, riskSeq.Load())
}
