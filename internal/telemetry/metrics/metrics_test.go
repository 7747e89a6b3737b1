package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 8)
	c.Collect(ch)
	close(ch)
	var total float64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		if pb.Counter != nil {
			total += pb.Counter.GetValue()
		}
		if pb.Histogram != nil {
			total += float64(pb.Histogram.GetSampleCount())
		}
	}
	return total
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordCacheRequest("local", true)
	m.RecordCacheFill(128)
	m.RecordUpstreamFetch(time.Millisecond, nil)
	m.RecordEviction(3)
	m.SetCachedBlocks(10)
	m.SetUsageQueueDepth(2)
}

func TestRecordCacheRequestIncrementsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCacheRequest("local", true)
	m.RecordCacheRequest("local", false)
	m.RecordCacheRequest("local", false)

	if got := counterValue(t, m.cacheRequests); got != 3 {
		t.Fatalf("expected 3 total cache requests, got %v", got)
	}
}

func TestRecordUpstreamFetchTracksErrorOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordUpstreamFetch(5*time.Millisecond, nil)
	m.RecordUpstreamFetch(5*time.Millisecond, errors.New("boom"))

	if got := counterValue(t, m.upstreamDuration); got != 2 {
		t.Fatalf("expected 2 upstream fetch observations, got %v", got)
	}
}
