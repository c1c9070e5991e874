package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	snapshotsTotal *prometheus.CounterVec
	risksGenerated *prometheus.CounterVec
	risksResolved  *prometheus.CounterVec
}

// New registers the recorder against the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder against reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		snapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_snapshots_total",
				Help: "Monitoring snapshots computed, by overall health",
			},
			[]string{"health"},
		),
		risksGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_risks_generated_total",
				Help: "Risks generated and persisted",
			},
			[]string{"risk_type"},
		),
		risksResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizpulse_risks_resolved_total",
				Help: "Risks resolved, by resolution path",
			},
			[]string{"reason"},
		),
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordSnapshot(health string) {
	r.snapshotsTotal.WithLabelValues(health).Inc()
}

func (r *Recorder) RecordRisksGenerated(riskType string, n int) {
	if n <= 0 {
		return
	}
	r.risksGenerated.WithLabelValues(riskType).Add(float64(n))
}

func (r *Recorder) RecordRisksResolved(reason string, n int) {
	if n <= 0 {
		return
	}
	r.risksResolved.WithLabelValues(reason).Add(float64(n))
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordError(string) {}
func (Nop) RecordLatency(string, float64) {}
func (Nop) RecordSnapshot(string) {}
func (Nop) RecordRisksGenerated(string, int) {}
func (Nop) RecordRisksResolved(string, int) {}
