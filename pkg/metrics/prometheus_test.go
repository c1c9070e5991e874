package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordError("source_revenue")
	r.RecordError("source_revenue")
	r.RecordSnapshot("CRITICAL")
	r.RecordRisksGenerated("REVENUE", 2)
	r.RecordRisksGenerated("REVENUE", 0)
	r.RecordRisksResolved("auto", 3)
	r.RecordLatency("snapshot", 0.02)

	if got := testutil.ToFloat64(r.errorsTotal.WithLabelValues("source_revenue")); got != 2 {
		t.Fatalf("errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.snapshotsTotal.WithLabelValues("CRITICAL")); got != 1 {
		t.Fatalf("snapshots = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.risksGenerated.WithLabelValues("REVENUE")); got != 2 {
		t.Fatalf("generated = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.risksResolved.WithLabelValues("auto")); got != 3 {
		t.Fatalf("resolved = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("latency series = %d, want 1", n)
	}
}

func TestNopIsSafe(t *testing.T) {
	var n Nop
	n.RecordError("x")
	n.RecordLatency("x", 1)
	n.RecordSnapshot("HEALTHY")
	n.RecordRisksGenerated("REVENUE", 1)
	n.RecordRisksResolved("manual", 1)
}
