package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
	"github.com/johnwlockwood/knowledge-graph/internal/task"
)

const (
	maxSubjectLength     = 2000
	defaultNumberOfUsers = 10
	maxNumberOfUsers     = 100
)

// graphUsecase coordinates the generation backend and the background task
// registry. It owns request validation and model resolution; the transport
// concerns (framing, admission, verification) stay in the handler layer.
type graphUsecase struct {
	generator domain.GraphGenerator
	registry  *task.Registry
	logger    *slog.Logger
}

// NewGraphUsecase creates the graph generation usecase.
func NewGraphUsecase(generator domain.GraphGenerator, registry *task.Registry, logger *slog.Logger) domain.GraphUsecase {
	return &graphUsecase{
		generator: generator,
		registry:  registry,
		logger:    logger,
	}
}

// Generate runs a one-shot generation and returns the complete graph.
func (u *graphUsecase) Generate(ctx context.Context, req *domain.GenerateRequest) (*entity.GraphResult, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}

	result, err := u.generator.Generate(ctx, req.Subject, req.Model)
	if err != nil {
		return nil, err
	}

	u.logger.Info("graph generated",
		"graph_id", result.ID,
		"model", result.Model,
		"nodes", len(result.Graph.Nodes),
		"edges", len(result.Graph.Edges),
	)
	return result, nil
}

// GenerateStream opens a streaming generation session. The metadata is built
// before the backend is touched so the caller can emit it unconditionally;
// an error return means the request itself was bad, never that the backend
// failed. Backend failures, including failures to open the stream at all,
// travel on the channel so the session still starts and ends with an error
// frame.
func (u *graphUsecase) GenerateStream(ctx context.Context, req *domain.GenerateRequest) (*domain.StreamMeta, <-chan entity.EntityChunk, error) {
	if err := validateGenerateRequest(req); err != nil {
		return nil, nil, err
	}

	meta := u.newStreamMeta(req.Subject, req.Model)

	ch, err := u.generator.GenerateStream(ctx, req.Subject, meta.Model)
	if err != nil {
		u.logger.Warn("graph stream failed to open", "session_id", meta.ID, "error", err)
		return meta, failedStream(err), nil
	}

	u.logger.Info("graph stream opened", "session_id", meta.ID, "model", meta.Model)
	return meta, ch, nil
}

// StreamUsers opens a streaming synthetic-user session.
func (u *graphUsecase) StreamUsers(ctx context.Context, req *domain.UsersRequest) (*domain.StreamMeta, <-chan entity.EntityChunk, error) {
	if req == nil || req.Domain == "" {
		return nil, nil, domain.NewInvalidInputError("domain is required")
	}
	if req.NumberOfUsers <= 0 {
		req.NumberOfUsers = defaultNumberOfUsers
	}
	if req.NumberOfUsers > maxNumberOfUsers {
		return nil, nil, domain.NewInvalidInputError(
			fmt.Sprintf("number_of_users too large (max %d)", maxNumberOfUsers))
	}

	meta := u.newStreamMeta(req.Domain, req.Model)

	ch, err := u.generator.GenerateUsersStream(ctx, req.Domain, req.NumberOfUsers, meta.Model)
	if err != nil {
		u.logger.Warn("user stream failed to open", "session_id", meta.ID, "error", err)
		return meta, failedStream(err), nil
	}

	u.logger.Info("user stream opened",
		"session_id", meta.ID,
		"model", meta.Model,
		"number_of_users", req.NumberOfUsers,
	)
	return meta, ch, nil
}

// StartGenerate schedules a background generation detached from the caller.
func (u *graphUsecase) StartGenerate(req *domain.GenerateRequest) (string, error) {
	if err := validateGenerateRequest(req); err != nil {
		return "", err
	}

	subject, model := req.Subject, req.Model
	id := u.registry.Submit(func(ctx context.Context) (any, error) {
		return u.generator.Generate(ctx, subject, model)
	})

	u.logger.Info("background generation submitted", "task_id", id)
	return id, nil
}

// TaskResult polls a background generation.
func (u *graphUsecase) TaskResult(taskID string) (any, domain.TaskState) {
	return u.registry.Poll(taskID)
}

func (u *graphUsecase) newStreamMeta(subject, model string) *domain.StreamMeta {
	return &domain.StreamMeta{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UnixMilli(),
		Subject:   subject,
		Model:     u.generator.ResolveModel(model),
	}
}

// failedStream carries a stream-open failure in-band: one error chunk, then
// closed. Consumers see the same terminal protocol as a mid-stream failure.
func failedStream(err error) <-chan entity.EntityChunk {
	ch := make(chan entity.EntityChunk, 1)
	ch <- entity.EntityChunk{Err: err}
	close(ch)
	return ch
}

func validateGenerateRequest(req *domain.GenerateRequest) error {
	if req == nil {
		return domain.ErrInvalidInput
	}
	if req.Subject == "" {
		return domain.NewInvalidInputError("subject is required")
	}
	if len(req.Subject) > maxSubjectLength {
		return domain.NewInvalidInputError(
			fmt.Sprintf("subject too long (max %d characters)", maxSubjectLength))
	}
	return nil
}
