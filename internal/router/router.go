package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/swagger"
	swaggerFiles "github.com/swaggo/files"

	"github.com/johnwlockwood/knowledge-graph/internal/config"
	"github.com/johnwlockwood/knowledge-graph/internal/handler"
	"github.com/johnwlockwood/knowledge-graph/internal/middleware"
	"github.com/johnwlockwood/knowledge-graph/internal/ratelimit"
)

// Setup sets up all routes
func Setup(
	h *server.Hertz,
	cfg *config.Config,
	counter *ratelimit.Counter,
	graphHandler *handler.GraphHandler,
	healthHandler *handler.HealthHandler,
) {
	// Global middleware
	h.Use(middleware.Recovery())
	h.Use(middleware.Logger())
	h.Use(middleware.CORS(cfg.CORS.AllowedOrigin))

	// Swagger API documentation
	// Access at: http://localhost:9000/swagger/index.html
	h.GET("/swagger/*any", swagger.WrapHandler(swaggerFiles.Handler))

	// Health check routes (never rate limited)
	h.GET("/ping", healthHandler.Ping)
	h.GET("/health/ready", healthHandler.Readiness)
	h.GET("/health/live", healthHandler.Liveness)

	// Generation routes, all behind per-client admission
	api := h.Group("/api")
	api.Use(middleware.RateLimit(counter, cfg.RateLimit))
	{
		api.POST("/generate-graph", graphHandler.GenerateGraph)
		api.POST("/stream-generate-graph", graphHandler.StreamGenerateGraph)
		api.POST("/stream-users", graphHandler.StreamUsers)

		// Background generation: submit, then poll by task id
		api.POST("/start-generate-graph", graphHandler.StartGenerateGraph)
		api.GET("/graph/:task_id", graphHandler.GetGraphResult)
	}
}
