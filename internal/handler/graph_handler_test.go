package handler

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/test/mock"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
)

type fakeUsecase struct {
	result    *entity.GraphResult
	chunks    []entity.EntityChunk
	err       error
	taskID    string
	pollValue any
	pollState domain.TaskState

	lastGenerate *domain.GenerateRequest
}

func (f *fakeUsecase) Generate(ctx context.Context, req *domain.GenerateRequest) (*entity.GraphResult, error) {
	f.lastGenerate = req
	return f.result, f.err
}

func (f *fakeUsecase) GenerateStream(ctx context.Context, req *domain.GenerateRequest) (*domain.StreamMeta, <-chan entity.EntityChunk, error) {
	f.lastGenerate = req
	if f.err != nil {
		return nil, nil, f.err
	}
	ch := make(chan entity.EntityChunk, len(f.chunks))
	for _, chunk := range f.chunks {
		ch <- chunk
	}
	close(ch)
	meta := &domain.StreamMeta{ID: "session-1", CreatedAt: 1700000000000, Subject: req.Subject, Model: "test-model"}
	return meta, ch, nil
}

func (f *fakeUsecase) StreamUsers(ctx context.Context, req *domain.UsersRequest) (*domain.StreamMeta, <-chan entity.EntityChunk, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	ch := make(chan entity.EntityChunk, len(f.chunks))
	for _, chunk := range f.chunks {
		ch <- chunk
	}
	close(ch)
	meta := &domain.StreamMeta{ID: "session-1", CreatedAt: 1700000000000, Subject: req.Domain, Model: "test-model"}
	return meta, ch, nil
}

func (f *fakeUsecase) StartGenerate(req *domain.GenerateRequest) (string, error) {
	f.lastGenerate = req
	return f.taskID, f.err
}

func (f *fakeUsecase) TaskResult(taskID string) (any, domain.TaskState) {
	return f.pollValue, f.pollState
}

type fakeVerifier struct {
	enabled bool
	accept  bool
	calls   int
}

func (f *fakeVerifier) Enabled() bool { return f.enabled }

func (f *fakeVerifier) Verify(ctx context.Context, token, clientKey string) bool {
	f.calls++
	if !f.enabled {
		return true
	}
	return f.accept
}

func newTestEngine(uc domain.GraphUsecase, verifier domain.Verifier) *route.Engine {
	h := NewGraphHandler(uc, verifier, discardLogger())
	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	engine.POST("/api/generate-graph", h.GenerateGraph)
	engine.POST("/api/stream-generate-graph", h.StreamGenerateGraph)
	engine.POST("/api/start-generate-graph", h.StartGenerateGraph)
	engine.GET("/api/graph/:task_id", h.GetGraphResult)
	return engine
}

// performStreamRequest drives a request through engine with a mock network
// connection attached: ut.PerformRequest never installs one, so handlers that
// hijack the response writer via c.GetWriter() would hit a nil writer.
func performStreamRequest(engine *route.Engine, method, url string, body *ut.Body, headers ...ut.Header) *protocol.Response {
	ctx := ut.CreateUtRequestContext(method, url, body, headers...)
	ctx.SetConn(mock.NewConn(""))
	engine.ServeHTTP(context.Background(), ctx)
	return &ctx.Response
}

func jsonBody(t *testing.T, v any) *ut.Body {
	t.Helper()
	data, err := sonic.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return &ut.Body{Body: bytes.NewReader(data), Len: len(data)}
}

func TestGenerateGraph(t *testing.T) {
	uc := &fakeUsecase{result: &entity.GraphResult{
		ID:        "g1",
		Subject:   "photosynthesis",
		Model:     "test-model",
		CreatedAt: 1700000000000,
		Graph: &entity.KnowledgeGraph{
			Nodes: []entity.Node{{ID: 1, Label: "Chlorophyll", Color: "#2e7d32"}},
			Edges: []entity.Edge{{Source: 1, Target: 2, Label: "absorbs", Color: "black"}},
		},
	}}
	engine := newTestEngine(uc, &fakeVerifier{})

	w := ut.PerformRequest(engine, "POST", "/api/generate-graph",
		jsonBody(t, map[string]string{"subject": "photosynthesis"}),
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()

	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
	}

	var got entity.GraphResult
	if err := sonic.Unmarshal(resp.Body(), &got); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if got.ID != "g1" || got.Graph == nil || len(got.Graph.Nodes) != 1 {
		t.Errorf("unexpected response: %+v", got)
	}
	if uc.lastGenerate == nil || uc.lastGenerate.Subject != "photosynthesis" {
		t.Errorf("usecase did not receive the subject: %+v", uc.lastGenerate)
	}
}

func TestGenerateGraphInvalidInput(t *testing.T) {
	uc := &fakeUsecase{err: domain.NewInvalidInputError("subject is required")}
	engine := newTestEngine(uc, &fakeVerifier{})

	w := ut.PerformRequest(engine, "POST", "/api/generate-graph",
		jsonBody(t, map[string]string{"subject": ""}),
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()

	if resp.StatusCode() != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode())
	}
	var body Response
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", body.Code)
	}
}

func TestGenerateGraphBackendFailure(t *testing.T) {
	uc := &fakeUsecase{err: domain.NewGenerationError(errors.New("model unavailable"))}
	engine := newTestEngine(uc, &fakeVerifier{})

	w := ut.PerformRequest(engine, "POST", "/api/generate-graph",
		jsonBody(t, map[string]string{"subject": "photosynthesis"}),
		ut.Header{Key: "Content-Type", Value: "application/json"})

	if got := w.Result().StatusCode(); got != 502 {
		t.Fatalf("status = %d, want 502", got)
	}
}

func TestStreamGenerateGraphVerification(t *testing.T) {
	tests := []struct {
		name       string
		verifier   *fakeVerifier
		token      string
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "missing token rejected before the gate",
			verifier:   &fakeVerifier{enabled: true, accept: true},
			token:      "",
			wantStatus: 400,
			wantCalls:  0,
		},
		{
			name:       "rejected token",
			verifier:   &fakeVerifier{enabled: true, accept: false},
			token:      "bad-token",
			wantStatus: 403,
			wantCalls:  1,
		},
		{
			name:       "gate disabled admits tokenless requests",
			verifier:   &fakeVerifier{enabled: false},
			token:      "",
			wantStatus: 200,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUsecase{chunks: []entity.EntityChunk{{IsEnd: true}}}
			engine := newTestEngine(uc, tt.verifier)

			resp := performStreamRequest(engine, "POST", "/api/stream-generate-graph",
				jsonBody(t, map[string]string{"subject": "photosynthesis", "captcha_token": tt.token}),
				ut.Header{Key: "Content-Type", Value: "application/json"})

			if resp.StatusCode() != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode(), tt.wantStatus, resp.Body())
			}
			if tt.verifier.calls != tt.wantCalls {
				t.Errorf("verifier calls = %d, want %d", tt.verifier.calls, tt.wantCalls)
			}
		})
	}
}

func TestStreamGenerateGraphBackendFailureStaysInBand(t *testing.T) {
	// A backend that fails before producing anything still gets a 200
	// stream: the start frame goes out first and the failure rides the
	// channel as the error terminal frame.
	uc := &fakeUsecase{chunks: []entity.EntityChunk{
		{Err: domain.NewGenerationError(errors.New("invalid api key"))},
	}}
	engine := newTestEngine(uc, &fakeVerifier{})

	resp := performStreamRequest(engine, "POST", "/api/stream-generate-graph",
		jsonBody(t, map[string]string{"subject": "photosynthesis"}),
		ut.Header{Key: "Content-Type", Value: "application/json"})

	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200 (body %s)", resp.StatusCode(), resp.Body())
	}
}

func TestStartGenerateGraph(t *testing.T) {
	uc := &fakeUsecase{taskID: "task-42"}
	engine := newTestEngine(uc, &fakeVerifier{})

	w := ut.PerformRequest(engine, "POST", "/api/start-generate-graph",
		jsonBody(t, map[string]string{"subject": "photosynthesis"}),
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()

	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
	}
	var body map[string]string
	if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["task_id"] != "task-42" {
		t.Errorf("task_id = %q, want task-42", body["task_id"])
	}
}

func TestGetGraphResult(t *testing.T) {
	tests := []struct {
		name  string
		state domain.TaskState
		value any
		want  any
	}{
		{"pending reads as processing", domain.TaskPending, nil, "Processing..."},
		{"unknown id reads as processing", domain.TaskUnknown, nil, "Processing..."},
		{"failed reads as error", domain.TaskFailed, nil, "error"},
		{"completed returns the payload", domain.TaskCompleted, map[string]any{"id": "g1"}, map[string]any{"id": "g1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUsecase{pollValue: tt.value, pollState: tt.state}
			engine := newTestEngine(uc, &fakeVerifier{})

			w := ut.PerformRequest(engine, "GET", "/api/graph/task-42", nil)
			resp := w.Result()

			if resp.StatusCode() != 200 {
				t.Fatalf("status = %d, body = %s", resp.StatusCode(), resp.Body())
			}
			var body map[string]any
			if err := sonic.Unmarshal(resp.Body(), &body); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			switch want := tt.want.(type) {
			case string:
				if body["result"] != want {
					t.Errorf("result = %v, want %q", body["result"], want)
				}
			case map[string]any:
				got, ok := body["result"].(map[string]any)
				if !ok || got["id"] != want["id"] {
					t.Errorf("result = %v, want %v", body["result"], want)
				}
			}
		})
	}
}
