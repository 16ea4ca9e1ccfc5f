package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{code: http.StatusUnauthorized, want: ErrAuthenticationFailed},
		{code: http.StatusForbidden, want: ErrAuthenticationFailed},
		{code: http.StatusTooManyRequests, want: ErrQuotaExceeded},
		{code: http.StatusInternalServerError, want: ErrServiceUnavailable},
		{code: http.StatusServiceUnavailable, want: ErrServiceUnavailable},
		{code: http.StatusBadRequest, want: ErrMalformedResponse},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.code); !errors.Is(got, tt.want) {
			t.Fatalf("ClassifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unavailable", err: fmt.Errorf("gemini: %w", ErrServiceUnavailable), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "auth", err: fmt.Errorf("gemini: %w", ErrAuthenticationFailed), want: false},
		{name: "quota", err: ErrQuotaExceeded, want: false},
		{name: "malformed", err: ErrMalformedResponse, want: false},
		{name: "reset", err: errors.New("read tcp: connection reset by peer"), want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
