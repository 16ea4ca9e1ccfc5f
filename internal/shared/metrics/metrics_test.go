package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncReviewStarted()
	IncReviewCompleted()
	ObserveReviewDurationMs(1500)
	ObserveReviewDurationMs(-5)

	out := Render()
	for _, want := range []string{
		"# TYPE review_started_total counter",
		"# TYPE review_duration_ms histogram",
		`review_duration_ms_bucket{le="+Inf"}`,
		"review_duration_ms_count",
		"upstream_retries_total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(250); got != "250" {
		t.Fatalf("expected 250, got %s", got)
	}
	if got := formatFloat(1.5); got != "1.5" {
		t.Fatalf("expected 1.5, got %s", got)
	}
}
