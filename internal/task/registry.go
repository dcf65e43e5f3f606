// Package task provides an in-memory registry for fire-and-forget background
// jobs, polled by opaque id. It is intentionally process-local: results live
// exactly as long as the process, and completed entries are never evicted.
package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
)

// Job is the unit of background work. It receives a detached context: jobs
// keep running and record their result even if the submitting client is gone.
type Job func(ctx context.Context) (any, error)

type record struct {
	state  domain.TaskState
	result any
	err    error
}

// Registry maps task ids to the eventual outcome of a background job.
// Safe for concurrent use; writers and readers go through the same lock.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*record
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tasks:  make(map[string]*record),
		logger: logger,
	}
}

// Submit allocates a fresh task id, records it as pending, and schedules job
// on its own goroutine. It returns immediately; the job's terminal state is
// written exactly once when it finishes.
func (r *Registry) Submit(job Job) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.tasks[id] = &record{state: domain.TaskPending}
	r.mu.Unlock()

	go r.run(id, job)

	return id
}

func (r *Registry) run(id string, job Job) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("background job panicked", "task_id", id, "panic", p)
			r.finish(id, nil, domain.NewInternalError(domain.ErrInternal))
		}
	}()

	// Detached from any request context on purpose.
	result, err := job(context.Background())
	r.finish(id, result, err)
}

func (r *Registry) finish(id string, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok || rec.state != domain.TaskPending {
		return
	}

	if err != nil {
		rec.state = domain.TaskFailed
		rec.err = err
		r.logger.Warn("background job failed", "task_id", id, "error", err)
		return
	}
	rec.state = domain.TaskCompleted
	rec.result = result
	r.logger.Info("background job completed", "task_id", id)
}

// Poll returns the current outcome for id. Unknown ids report
// domain.TaskUnknown; pending and failed tasks carry a nil result.
func (r *Registry) Poll(id string) (any, domain.TaskState) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tasks[id]
	if !ok {
		return nil, domain.TaskUnknown
	}
	if rec.state == domain.TaskCompleted {
		return rec.result, rec.state
	}
	return nil, rec.state
}
