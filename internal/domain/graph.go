package domain

import (
	"context"

	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
)

// GenerateRequest is the internal shape of a graph generation request.
// The hierarchy fields link a sub-graph back to the node it was expanded
// from; they are echoed to the client untouched.
type GenerateRequest struct {
	Subject string
	Model   string

	ParentGraphID   string
	ParentNodeID    string
	SourceNodeLabel string
	Title           string
}

// UsersRequest is the internal shape of a synthetic-user generation request.
type UsersRequest struct {
	Domain        string
	NumberOfUsers int
	Model         string
}

// StreamMeta describes an opened streaming session: a fresh session id,
// creation time in Unix milliseconds, and the echoed subject plus the model
// actually used after whitelist resolution.
type StreamMeta struct {
	ID        string
	CreatedAt int64
	Subject   string
	Model     string
}

// GraphGenerator is the structured-generation backend. Streaming methods
// return a channel that yields one EntityChunk per pull and is closed after
// a terminal chunk (IsEnd or Err). Producers must stop promptly when ctx is
// cancelled.
type GraphGenerator interface {
	// Generate produces a complete knowledge graph in one call.
	Generate(ctx context.Context, subject, model string) (*entity.GraphResult, error)

	// GenerateStream produces graph entities incrementally.
	GenerateStream(ctx context.Context, subject, model string) (<-chan entity.EntityChunk, error)

	// GenerateUsersStream produces synthetic user records incrementally.
	GenerateUsersStream(ctx context.Context, domain string, numberOfUsers int, model string) (<-chan entity.EntityChunk, error)

	// ResolveModel maps a requested model to the one that will actually be
	// used, falling back to the default for unknown or empty names.
	ResolveModel(requested string) string
}

// Verifier decides whether a request carries valid proof of humanity.
// Implementations never return an error: any provider failure is a false.
type Verifier interface {
	// Enabled reports whether a verification provider is configured.
	// When false, Verify always returns true without an outbound call.
	Enabled() bool

	// Verify checks token for clientKey against the provider.
	Verify(ctx context.Context, token, clientKey string) bool
}

// GraphUsecase orchestrates generation requests: validation, model
// resolution, streaming session metadata, and background job submission.
type GraphUsecase interface {
	// Generate runs a one-shot generation and returns the full graph.
	Generate(ctx context.Context, req *GenerateRequest) (*entity.GraphResult, error)

	// GenerateStream opens a streaming generation. A non-nil error means the
	// request was invalid; backend failures, including stream-open failures,
	// are delivered on the channel so the caller can emit session metadata
	// first.
	GenerateStream(ctx context.Context, req *GenerateRequest) (*StreamMeta, <-chan entity.EntityChunk, error)

	// StreamUsers opens a streaming synthetic-user generation.
	StreamUsers(ctx context.Context, req *UsersRequest) (*StreamMeta, <-chan entity.EntityChunk, error)

	// StartGenerate schedules a background generation and returns its task
	// id immediately. The job is detached from the caller's context.
	StartGenerate(req *GenerateRequest) (string, error)

	// TaskResult polls a background generation by task id.
	TaskResult(taskID string) (any, TaskState)
}

// TaskState is the lifecycle of a background generation job.
type TaskState int

const (
	// TaskUnknown means the id was never issued by this process.
	TaskUnknown TaskState = iota
	// TaskPending means the job is still running.
	TaskPending
	// TaskCompleted means the job finished and its result is available.
	TaskCompleted
	// TaskFailed means the job finished with an error.
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}
