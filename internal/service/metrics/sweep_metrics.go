package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bizpulse",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Stale-risk sweeps by result",
		},
		[]string{"result"},
	)

	SweepResolved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bizpulse",
			Subsystem: "sweeper",
			Name:      "resolved_total",
			Help:      "Risks resolved by the sweeper",
		},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bizpulse",
			Subsystem: "sweeper",
			Name:      "duration_seconds",
			Help:      "Duration of a sweep",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register adds the sweeper collectors to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(SweepRuns, SweepResolved, SweepDuration)
	})
}
