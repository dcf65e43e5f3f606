package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/http1/resp"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
	"github.com/johnwlockwood/knowledge-graph/internal/handler/dto"
	"github.com/johnwlockwood/knowledge-graph/internal/middleware"
)

// GraphHandler serves the graph generation endpoints.
type GraphHandler struct {
	usecase  domain.GraphUsecase
	verifier domain.Verifier
	logger   *slog.Logger
}

// NewGraphHandler creates the graph handler.
func NewGraphHandler(usecase domain.GraphUsecase, verifier domain.Verifier, logger *slog.Logger) *GraphHandler {
	return &GraphHandler{
		usecase:  usecase,
		verifier: verifier,
		logger:   logger,
	}
}

// GenerateGraph handles synchronous graph generation.
//
//	@Summary		Generate a knowledge graph
//	@Description	Generates a complete knowledge graph for a subject in one call
//	@Tags			graph
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.GenerateGraphRequest	true	"Generation request"
//	@Success		200		{object}	entity.GraphResult			"Generated graph"
//	@Failure		400		{object}	handler.Response			"Invalid request"
//	@Failure		429		{object}	dto.RateLimitError			"Rate limit exceeded"
//	@Router			/api/generate-graph [post]
func (h *GraphHandler) GenerateGraph(ctx context.Context, c *app.RequestContext) {
	var req dto.GenerateGraphRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Warn("failed to bind request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("request body must be JSON"))
		return
	}

	result, err := h.usecase.Generate(ctx, &domain.GenerateRequest{
		Subject: req.Subject,
		Model:   req.Model,
	})
	if err != nil {
		h.logger.Warn("generation failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, result)
}

// StreamGenerateGraph handles streaming graph generation over
// newline-delimited JSON.
//
//	@Summary		Stream a knowledge graph
//	@Description	Streams graph entities as they are generated, one JSON record per line
//	@Tags			graph
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.StreamGraphRequest	true	"Streaming request"
//	@Success		200		"NDJSON stream of frames"
//	@Failure		400		{object}	handler.Response	"Invalid request"
//	@Failure		403		{object}	handler.Response	"Verification rejected"
//	@Failure		429		{object}	dto.RateLimitError	"Rate limit exceeded"
//	@Router			/api/stream-generate-graph [post]
func (h *GraphHandler) StreamGenerateGraph(ctx context.Context, c *app.RequestContext) {
	var req dto.StreamGraphRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Warn("failed to bind request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("request body must be JSON"))
		return
	}

	// When verification is mandatory, a token-less request is a shape error
	// rejected before the gate is ever consulted.
	if h.verifier.Enabled() {
		if req.CaptchaToken == "" {
			BadRequestResponse(c, "captcha_token is required")
			return
		}
		if !h.verifier.Verify(ctx, req.CaptchaToken, middleware.ClientKey(c)) {
			ErrorResponse(c, domain.NewVerificationError("human verification failed"))
			return
		}
	}

	// The producer lives on this context; cancelling it on any exit stops
	// generation promptly, including after a client disconnect.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	meta, ch, err := h.usecase.GenerateStream(streamCtx, &domain.GenerateRequest{
		Subject:         req.Subject,
		Model:           req.Model,
		ParentGraphID:   req.ParentGraphID,
		ParentNodeID:    req.ParentNodeID,
		SourceNodeLabel: req.SourceNodeLabel,
		Title:           req.Title,
	})
	if err != nil {
		// Validation failure only. Backend failures arrive on the channel
		// after the start frame is on the wire.
		ErrorResponse(c, err)
		return
	}

	start := dto.StartFrame{Result: dto.StreamStart{
		ID:              meta.ID,
		CreatedAt:       meta.CreatedAt,
		Subject:         meta.Subject,
		Model:           meta.Model,
		Status:          dto.StreamStatusStreaming,
		Message:         "Streaming knowledge graph entities",
		ParentGraphID:   req.ParentGraphID,
		ParentNodeID:    req.ParentNodeID,
		SourceNodeLabel: req.SourceNodeLabel,
		Title:           req.Title,
	}}

	runStream(h.hijackStream(c), h.logger, start, ch)
}

// StreamUsers handles streaming synthetic-user generation.
//
//	@Summary		Stream synthetic users
//	@Description	Streams synthetic user records for a domain, one JSON record per line
//	@Tags			graph
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.StreamUsersRequest	true	"Streaming request"
//	@Success		200		"NDJSON stream of frames"
//	@Failure		400		{object}	handler.Response	"Invalid request"
//	@Failure		429		{object}	dto.RateLimitError	"Rate limit exceeded"
//	@Router			/api/stream-users [post]
func (h *GraphHandler) StreamUsers(ctx context.Context, c *app.RequestContext) {
	var req dto.StreamUsersRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Warn("failed to bind request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("request body must be JSON"))
		return
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	meta, ch, err := h.usecase.StreamUsers(streamCtx, &domain.UsersRequest{
		Domain:        req.Domain,
		NumberOfUsers: req.NumberOfUsers,
		Model:         req.Model,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	start := dto.StartFrame{Result: dto.StreamStart{
		ID:        meta.ID,
		CreatedAt: meta.CreatedAt,
		Subject:   meta.Subject,
		Model:     meta.Model,
		Status:    dto.StreamStatusStreaming,
		Message:   "Streaming user records",
	}}

	runStream(h.hijackStream(c), h.logger, start, ch)
}

// StartGenerateGraph registers a background generation and returns its task
// id without waiting.
//
//	@Summary		Start a background graph generation
//	@Tags			graph
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.GenerateGraphRequest	true	"Generation request"
//	@Success		200		{object}	dto.StartGraphResponse		"Task id"
//	@Failure		400		{object}	handler.Response			"Invalid request"
//	@Router			/api/start-generate-graph [post]
func (h *GraphHandler) StartGenerateGraph(ctx context.Context, c *app.RequestContext) {
	var req dto.GenerateGraphRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Warn("failed to bind request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("request body must be JSON"))
		return
	}

	taskID, err := h.usecase.StartGenerate(&domain.GenerateRequest{
		Subject: req.Subject,
		Model:   req.Model,
	})
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, dto.StartGraphResponse{TaskID: taskID})
}

// GetGraphResult polls a background generation by task id.
//
//	@Summary		Poll a background graph generation
//	@Tags			graph
//	@Produce		json
//	@Param			task_id	path		string					true	"Task id"
//	@Success		200		{object}	dto.TaskResultResponse	"Result or progress marker"
//	@Router			/api/graph/{task_id} [get]
func (h *GraphHandler) GetGraphResult(ctx context.Context, c *app.RequestContext) {
	taskID := c.Param("task_id")

	result, state := h.usecase.TaskResult(taskID)
	switch state {
	case domain.TaskCompleted:
		c.JSON(consts.StatusOK, dto.TaskResultResponse{Result: result})
	case domain.TaskFailed:
		c.JSON(consts.StatusOK, dto.TaskResultResponse{Result: "error"})
	default:
		// Pending and unknown ids read the same to a polling client.
		c.JSON(consts.StatusOK, dto.TaskResultResponse{Result: "Processing..."})
	}
}

// hijackStream switches the response to chunked NDJSON delivery and returns
// the writer the session frames go to. Must run after the status code is set.
func (h *GraphHandler) hijackStream(c *app.RequestContext) frameWriter {
	c.SetStatusCode(consts.StatusOK)
	c.Response.Header.Set("Content-Type", "application/x-ndjson")
	c.Response.Header.Set("Cache-Control", "no-cache")

	writer := resp.NewChunkedBodyWriter(&c.Response, c.GetWriter())
	c.Response.HijackWriter(writer)
	return writer
}
