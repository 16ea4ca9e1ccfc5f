package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-reviewer/internal/extract"
	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/llm/gemini"
	openai "resume-reviewer/internal/llm/openai"
	"resume-reviewer/internal/review"
	"resume-reviewer/internal/services/health"
	"resume-reviewer/internal/shared/config"
	"resume-reviewer/internal/shared/server"
	"resume-reviewer/internal/shared/server/middleware"
	"resume-reviewer/internal/shared/telemetry"
)

const llmRetryBaseDelay = 300 * time.Millisecond

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	Extractor     extract.Extractor
	Analyzer      llm.Analyzer
	ReviewService *review.Service
	ReviewHandler *review.Handler
	Health        *health.Service
}

// Option adjusts how Build wires the app.
type Option func(*buildOptions)

type buildOptions struct {
	analyzer    llm.Analyzer
	extractor   extract.Extractor
	rateLimiter *middleware.RateLimiter
}

// WithAnalyzer replaces the provider client. Retry wrapping still applies.
func WithAnalyzer(a llm.Analyzer) Option {
	return func(o *buildOptions) { o.analyzer = a }
}

// WithExtractor replaces the PDF extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(o *buildOptions) { o.extractor = e }
}

// WithRateLimiter supplies the limiter used for upload throttling.
func WithRateLimiter(l *middleware.RateLimiter) Option {
	return func(o *buildOptions) { o.rateLimiter = l }
}

// Build wires extractor, analyzer, service, handlers and router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		cfg.LLMModel = config.DefaultModel(cfg.LLMProvider)
	}

	analyzer := o.analyzer
	if analyzer == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		built, err := NewAnalyzer(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		analyzer = built
	}
	analyzer = llm.NewRetrying(analyzer, cfg.LLMRetryAttempts, llmRetryBaseDelay)

	extractor := o.extractor
	if extractor == nil {
		extractor = extract.NewPDFExtractor()
	}

	svc := review.NewService(extractor, analyzer, review.Limits{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		MaxResumeChars:  cfg.MaxResumeChars,
		MinResumeChars:  cfg.MinResumeChars,
		AnalysisTimeout: cfg.AnalysisTimeout,
	})

	app := &App{
		Config:        cfg,
		Extractor:     extractor,
		Analyzer:      analyzer,
		ReviewService: svc,
		ReviewHandler: review.NewHandler(svc),
		Health:        health.NewService(cfg.LLMProvider, cfg.LLMModel),
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		ReviewHandler: app.ReviewHandler,
		Health:        app.Health,
		RateLimiter:   o.rateLimiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":              cfg.Env,
		"llm_provider":     cfg.LLMProvider,
		"llm_model":        cfg.LLMModel,
		"max_upload_bytes": svc.Limits.MaxUploadBytes,
		"max_resume_chars": svc.Limits.MaxResumeChars,
	})
	return app, nil
}

// NewAnalyzer creates the provider client selected by cfg.LLMProvider.
func NewAnalyzer(ctx context.Context, cfg config.Config) (llm.Analyzer, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.AnalysisTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrConfigurationMissing, err)
		}
		return client, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.AnalysisTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrConfigurationMissing, err)
		}
		return client, nil
	}
}
