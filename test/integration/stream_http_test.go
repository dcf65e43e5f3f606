//go:build integration
// +build integration

package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/network/netpoll"

	"github.com/johnwlockwood/knowledge-graph/internal/config"
	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
	"github.com/johnwlockwood/knowledge-graph/internal/handler"
	"github.com/johnwlockwood/knowledge-graph/internal/infrastructure/captcha"
	"github.com/johnwlockwood/knowledge-graph/internal/ratelimit"
	"github.com/johnwlockwood/knowledge-graph/internal/router"
	"github.com/johnwlockwood/knowledge-graph/internal/task"
	"github.com/johnwlockwood/knowledge-graph/internal/usecase"
)

// scriptedGenerator emits a fixed entity sequence with small delays so the
// test observes real incremental delivery.
type scriptedGenerator struct {
	chunks []entity.EntityChunk
}

func (g *scriptedGenerator) Generate(ctx context.Context, subject, model string) (*entity.GraphResult, error) {
	return &entity.GraphResult{
		ID:        "g1",
		CreatedAt: time.Now().UnixMilli(),
		Subject:   subject,
		Model:     g.ResolveModel(model),
		Graph: &entity.KnowledgeGraph{
			Nodes: []entity.Node{{ID: 1, Label: "Root", Color: "#2e7d32"}},
		},
	}, nil
}

func (g *scriptedGenerator) GenerateStream(ctx context.Context, subject, model string) (<-chan entity.EntityChunk, error) {
	out := make(chan entity.EntityChunk)
	go func() {
		defer close(out)
		for _, chunk := range g.chunks {
			select {
			case out <- chunk:
				time.Sleep(10 * time.Millisecond)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (g *scriptedGenerator) GenerateUsersStream(ctx context.Context, domainName string, numberOfUsers int, model string) (<-chan entity.EntityChunk, error) {
	return g.GenerateStream(ctx, domainName, model)
}

func (g *scriptedGenerator) ResolveModel(requested string) string {
	if requested == "" {
		return "test-model"
	}
	return requested
}

// TestStreamHTTP_NDJSON exercises the full streaming path over a real HTTP
// connection: frame order, incremental delivery, and the terminal frame.
// Run with: go test -tags integration ./test/integration/...
func TestStreamHTTP_NDJSON(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:               "127.0.0.1",
			Port:               19000,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       5 * time.Minute,
			MaxRequestBodySize: 4,
		},
		RateLimit: config.RateLimitConfig{
			MaxRequests:   100,
			WindowSeconds: 60,
			MaxClients:    64,
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	generator := &scriptedGenerator{chunks: []entity.EntityChunk{
		{Entity: &entity.GraphEntity{Type: entity.KindNode, Entity: &entity.Node{ID: 1, Label: "Photosynthesis", Color: "#2e7d32"}}},
		{Entity: &entity.GraphEntity{Type: entity.KindNode, Entity: &entity.Node{ID: 2, Label: "Chlorophyll", Color: "#2e7d32"}}},
		{Entity: &entity.GraphEntity{Type: entity.KindEdge, Entity: &entity.Edge{Source: 1, Target: 2, Label: "uses", Color: "black"}}},
		{IsEnd: true},
	}}

	gate, err := captcha.NewGate(config.VerificationConfig{}, logger)
	if err != nil {
		t.Fatalf("failed to create verification gate: %v", err)
	}

	registry := task.NewRegistry(logger)
	graphUsecase := usecase.NewGraphUsecase(generator, registry, logger)
	graphHandler := handler.NewGraphHandler(graphUsecase, gate, logger)
	healthHandler := handler.NewHealthHandler(gate, []string{"test-model"}, logger)
	counter := ratelimit.NewCounter(cfg.RateLimit.MaxClients)

	h := server.New(
		server.WithHostPorts(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
		server.WithTransport(netpoll.NewTransporter),
	)
	router.Setup(h, cfg, counter, graphHandler, healthHandler)

	go func() {
		if err := h.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()

	time.Sleep(2 * time.Second)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Shutdown(ctx)
	}()

	baseURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	t.Run("NDJSON streaming generation", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{"subject": "photosynthesis"})
		req, err := http.NewRequest("POST", baseURL+"/api/stream-generate-graph", bytes.NewReader(reqBody))
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: 60 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-ndjson") {
			t.Errorf("expected Content-Type application/x-ndjson, got %q", ct)
		}

		reader := bufio.NewReader(resp.Body)
		var frames []map[string]any
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				t.Fatalf("failed to read stream: %v", err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			var frame map[string]any
			if err := json.Unmarshal([]byte(line), &frame); err != nil {
				t.Fatalf("frame is not valid JSON: %v, line: %s", err, line)
			}
			frames = append(frames, frame)
		}

		if len(frames) != 5 {
			t.Fatalf("expected 5 frames (start + 3 entities + terminal), got %d", len(frames))
		}

		start, ok := frames[0]["result"].(map[string]any)
		if !ok {
			t.Fatalf("first frame is not a start frame: %v", frames[0])
		}
		if start["status"] != "streaming" {
			t.Errorf("start status = %v, want streaming", start["status"])
		}
		if start["subject"] != "photosynthesis" {
			t.Errorf("start subject = %v, want photosynthesis", start["subject"])
		}
		if start["id"] == "" || start["id"] == nil {
			t.Error("start frame must carry a session id")
		}

		for i := 1; i <= 3; i++ {
			if frames[i]["type"] != "node" && frames[i]["type"] != "edge" {
				t.Errorf("frame %d is not an entity frame: %v", i, frames[i])
			}
		}

		terminal := frames[4]
		if terminal["result"] != "graph complete" || terminal["status"] != "complete" {
			t.Errorf("terminal frame = %v, want completion marker", terminal)
		}
	})

	t.Run("background generation round trip", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{"subject": "photosynthesis"})
		resp, err := http.Post(baseURL+"/api/start-generate-graph", "application/json", bytes.NewReader(reqBody))
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		defer resp.Body.Close()

		var startResp struct {
			TaskID string `json:"task_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&startResp); err != nil {
			t.Fatalf("failed to decode submit response: %v", err)
		}
		if startResp.TaskID == "" {
			t.Fatal("expected a task id")
		}

		// Poll until the job finishes.
		deadline := time.Now().Add(10 * time.Second)
		for {
			pollResp, err := http.Get(baseURL + "/api/graph/" + startResp.TaskID)
			if err != nil {
				t.Fatalf("poll failed: %v", err)
			}
			var taskResp struct {
				Result any `json:"result"`
			}
			err = json.NewDecoder(pollResp.Body).Decode(&taskResp)
			pollResp.Body.Close()
			if err != nil {
				t.Fatalf("failed to decode poll response: %v", err)
			}

			if marker, ok := taskResp.Result.(string); ok {
				if marker == "error" {
					t.Fatal("background generation failed")
				}
				if time.Now().After(deadline) {
					t.Fatal("background generation did not finish in time")
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}

			result, ok := taskResp.Result.(map[string]any)
			if !ok {
				t.Fatalf("unexpected result shape: %v", taskResp.Result)
			}
			if result["subject"] != "photosynthesis" {
				t.Errorf("result subject = %v, want photosynthesis", result["subject"])
			}
			break
		}
	})

	t.Run("unknown task id reads as processing", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/graph/no-such-task")
		if err != nil {
			t.Fatalf("poll failed: %v", err)
		}
		defer resp.Body.Close()

		var taskResp struct {
			Result any `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&taskResp); err != nil {
			t.Fatalf("failed to decode poll response: %v", err)
		}
		if taskResp.Result != "Processing..." {
			t.Errorf("result = %v, want Processing...", taskResp.Result)
		}
	})
}
