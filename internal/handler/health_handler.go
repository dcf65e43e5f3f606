package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	verifier domain.Verifier
	models   []string
	logger   *slog.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(verifier domain.Verifier, models []string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		verifier: verifier,
		models:   models,
		logger:   logger,
	}
}

// Ping answers a bare reachability check.
//
//	@Summary	Ping
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ping [get]
func (h *HealthHandler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"message": "pong"})
}

// Liveness reports whether the process is running.
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health/live [get]
func (h *HealthHandler) Liveness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"status": "alive"})
}

// Readiness reports whether the service can accept generation traffic.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/health/ready [get]
func (h *HealthHandler) Readiness(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]any{
		"status":       "ready",
		"models":       h.models,
		"verification": h.verifier.Enabled(),
	})
}
