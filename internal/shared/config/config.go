package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxUploadBytes  = 5 << 20
	defaultMaxResumeChars  = 8000
	defaultMinResumeChars  = 50
	defaultAnalysisTimeout = 90 * time.Second
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultOpenAIModel     = "gpt-4o-mini"
)

// ErrConfigurationMissing is returned when a credential required to serve requests is absent.
var ErrConfigurationMissing = errors.New("configuration missing")

// Config holds application configuration. It is read-only after Load.
type Config struct {
	Port               string
	Env                string
	CORSAllowOrigin    []string
	LLMProvider        string
	LLMModel           string
	GeminiAPIKey       string
	OpenAIAPIKey       string
	MaxUploadBytes     int64
	MaxResumeChars     int
	MinResumeChars     int
	AnalysisTimeout    time.Duration
	LLMRetryAttempts   int
	RateLimitPerMinute float64
	RateLimitBurst     int
	LogJSON            bool
	LogDebug           bool
}

// Load reads configuration from environment variables with sensible defaults.
// A missing API key for the selected provider is a fatal condition.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LLMProvider:        normalizeProvider(getEnv("LLM_PROVIDER", "gemini")),
		LLMModel:           strings.TrimSpace(os.Getenv("LLM_MODEL")),
		GeminiAPIKey:       strings.TrimSpace(firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")),
		OpenAIAPIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		MaxUploadBytes:     int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		MaxResumeChars:     getInt("MAX_RESUME_CHARS", defaultMaxResumeChars),
		MinResumeChars:     getInt("MIN_RESUME_CHARS", defaultMinResumeChars),
		AnalysisTimeout:    time.Duration(getInt("ANALYSIS_TIMEOUT_SECONDS", int(defaultAnalysisTimeout/time.Second))) * time.Second,
		LLMRetryAttempts:   getInt("LLM_RETRY_ATTEMPTS", 2),
		RateLimitPerMinute: float64(getInt("RATE_LIMIT_PER_MINUTE", 10)),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 5),
		LogJSON:            getBool("LOG_JSON", true),
		LogDebug:           getBool("LOG_DEBUG", false),
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel(cfg.LLMProvider)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the credentials for the selected provider are present.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required", ErrConfigurationMissing)
		}
	default:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required", ErrConfigurationMissing)
		}
	}
	if c.MaxUploadBytes <= 0 || c.MaxResumeChars <= 0 {
		return fmt.Errorf("%w: upload and resume limits must be positive", ErrConfigurationMissing)
	}
	return nil
}

// APIKey returns the credential for the selected provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// DefaultModel returns the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	if provider == "openai" {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	default:
		return "gemini"
	}
}
