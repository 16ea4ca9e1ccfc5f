package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-reviewer/internal/shared/config"
)

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"3000":  ":3000",
		":9090": ":9090",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRouterServesHealthWithoutReviewHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: config.Config{LLMProvider: "gemini", LLMModel: "gemini-2.5-flash"}})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id middleware to run")
	}
}

func TestRateLimitRulesDisabledWhenUnset(t *testing.T) {
	if rules := rateLimitRules(config.Config{}); rules != nil {
		t.Fatalf("expected no rules, got %v", rules)
	}
	rules := rateLimitRules(config.Config{RateLimitPerMinute: 30, RateLimitBurst: 2})
	if rules[uploadRateLimitGroup].Burst != 2 {
		t.Fatalf("expected upload rule, got %v", rules)
	}
}
