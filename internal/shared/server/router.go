package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-reviewer/internal/review"
	"resume-reviewer/internal/services/health"
	"resume-reviewer/internal/shared/config"
	"resume-reviewer/internal/shared/metrics"
	"resume-reviewer/internal/shared/server/middleware"
	"resume-reviewer/internal/shared/server/respond"
)

const uploadRateLimitGroup = "UPLOAD"

// RouterDeps collects the handlers mounted on the engine.
type RouterDeps struct {
	Config        config.Config
	ReviewHandler *review.Handler
	Health        *health.Service
	RateLimiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if deps.ReviewHandler != nil {
		r.MaxMultipartMemory = deps.ReviewHandler.BodyLimit()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rateLimitRules(deps.Config),
			GroupFor: uploadGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(deps.Config.LLMProvider, deps.Config.LLMModel)
	}
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})
	r.GET("/metrics", metrics.Handler())

	if deps.ReviewHandler != nil {
		deps.ReviewHandler.RegisterRoutes(r)
	}

	return r
}

func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	if cfg.RateLimitPerMinute <= 0 || cfg.RateLimitBurst <= 0 {
		return nil
	}
	return map[string]middleware.RateLimitRule{
		uploadRateLimitGroup: middleware.PerMinute(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
	}
}

// uploadGroup limits only upload submissions; other routes have no rule.
func uploadGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.Request.URL.Path == "/upload" {
		return uploadRateLimitGroup
	}
	return "NONE"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
