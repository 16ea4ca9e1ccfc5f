package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Analyzer sends a prompt to a generative-language service and returns its text.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, prompt string) (string, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Failure classes reported by providers. Callers match them with errors.Is.
var (
	ErrServiceUnavailable   = errors.New("analysis service unavailable")
	ErrAuthenticationFailed = errors.New("analysis service authentication failed")
	ErrQuotaExceeded        = errors.New("analysis service quota exceeded")
	ErrMalformedResponse    = errors.New("analysis service returned a malformed response")
)

// ClassifyStatus maps an upstream HTTP status to a failure class.
func ClassifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuthenticationFailed
	case code == http.StatusTooManyRequests:
		return ErrQuotaExceeded
	case code == http.StatusRequestTimeout || code >= http.StatusInternalServerError:
		return ErrServiceUnavailable
	default:
		return ErrMalformedResponse
	}
}

// IsTransient reports whether err is worth one more attempt.
// Auth and quota failures are fatal for the process and never retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof")
}
