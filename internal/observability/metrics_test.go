package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	ctx := context.Background()

	rec.Observe(ctx, "acknowledge_alarm", true, 5*time.Millisecond)
	rec.Observe(ctx, "acknowledge_alarm", true, 7*time.Millisecond)
	rec.Observe(ctx, "hold_batch", false, 2*time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("acknowledge_alarm", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("hold_batch", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestObserveIgnoresEmptyOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)
	rec.Observe(context.Background(), "", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) > 0 {
				t.Fatalf("unexpected series recorded: %v", mf)
			}
		}
	}
}
