package llm

import (
	"context"
	"time"

	"resume-reviewer/internal/shared/metrics"
	"resume-reviewer/internal/shared/telemetry"
)

const defaultRetryDelay = 300 * time.Millisecond

// sleep is swapped in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type retrying struct {
	base     Analyzer
	attempts int
	delay    time.Duration
}

// NewRetrying wraps base so transient failures are retried up to attempts
// total calls, with a linearly growing delay between them.
func NewRetrying(base Analyzer, attempts int, delay time.Duration) Analyzer {
	if base == nil || attempts <= 1 {
		return base
	}
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	return &retrying{base: base, attempts: attempts, delay: delay}
}

func (r *retrying) Analyze(ctx context.Context, prompt string) (string, error) {
	var (
		out string
		err error
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		out, err = r.base.Analyze(ctx, prompt)
		if err == nil || !IsTransient(err) || attempt == r.attempts {
			return out, err
		}

		metrics.IncUpstreamRetry()
		telemetry.Warn("llm.retry", map[string]any{
			"attempt":    attempt,
			"request_id": RequestIDFromContext(ctx),
			"err":        err,
		})
		if serr := sleep(ctx, time.Duration(attempt)*r.delay); serr != nil {
			return "", serr
		}
	}
	return out, err
}
