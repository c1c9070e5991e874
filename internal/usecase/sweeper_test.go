package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"BizPulse/internal/domain/models"
)

type countingResolver struct {
	calls  atomic.Int32
	maxAge atomic.Int32
	fail   bool
}

func (r *countingResolver) AutoResolveStale(_ context.Context, maxAgeHours int) ([]models.Risk, error) {
	r.calls.Add(1)
	r.maxAge.Store(int32(maxAgeHours))
	if r.fail {
		return nil, errors.New("store offline")
	}
	return []models.Risk{{RiskID: "x"}}, nil
}

func TestSweeperRunsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := &countingResolver{}
	s := NewSweeper(r, 5*time.Millisecond, 12, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for r.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeper ran %d times", r.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := r.maxAge.Load(); got != 12 {
		t.Fatalf("max age = %d", got)
	}
}

func TestSweepOnceSurvivesErrors(t *testing.T) {
	r := &countingResolver{fail: true}
	s := NewSweeper(r, time.Hour, 48, nil)
	s.SweepOnce(context.Background())
	s.SweepOnce(context.Background())
	if r.calls.Load() != 2 {
		t.Fatalf("calls = %d", r.calls.Load())
	}
}
