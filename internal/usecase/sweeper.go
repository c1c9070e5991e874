package usecase

import (
	"context"
	"time"

	"BizPulse/internal/domain/models"
	svcmetrics "BizPulse/internal/service/metrics"
	applogger "BizPulse/pkg/logger"
)

type staleResolver interface {
	AutoResolveStale(ctx context.Context, maxAgeHours int) ([]models.Risk, error)
}

// Sweeper periodically auto-resolves stale risks.
type Sweeper struct {
	resolver    staleResolver
	interval    time.Duration
	maxAgeHours int
	logger      *applogger.Logger
}

func NewSweeper(resolver staleResolver, interval time.Duration, maxAgeHours int, logger *applogger.Logger) *Sweeper {
	if logger == nil {
		logger = applogger.Nop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	svcmetrics.Register()
	return &Sweeper{resolver: resolver, interval: interval, maxAgeHours: maxAgeHours, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled. Sweep failures are logged and do not stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started",
		applogger.Duration("interval", s.interval),
		applogger.Int("max_age_hours", s.maxAgeHours),
	)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	start := time.Now()
	resolved, err := s.resolver.AutoResolveStale(ctx, s.maxAgeHours)
	svcmetrics.SweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		svcmetrics.SweepRuns.WithLabelValues("error").Inc()
		s.logger.Error("sweep failed", applogger.Error(err))
		return
	}
	svcmetrics.SweepRuns.WithLabelValues("ok").Inc()
	svcmetrics.SweepResolved.Add(float64(len(resolved)))
	if len(resolved) > 0 {
		s.logger.Info("sweep resolved risks", applogger.Int("count", len(resolved)))
	}
}
