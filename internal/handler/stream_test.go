package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
	"github.com/johnwlockwood/knowledge-graph/internal/handler/dto"
)

// fakeFrameWriter records frames and can simulate a client disconnect after
// a fixed number of successful writes.
type fakeFrameWriter struct {
	buf       bytes.Buffer
	writes    int
	failAfter int // 0 means never fail
	flushes   int
}

func (w *fakeFrameWriter) Write(p []byte) (int, error) {
	if w.failAfter > 0 && w.writes >= w.failAfter {
		return 0, errors.New("connection reset by peer")
	}
	w.writes++
	return w.buf.Write(p)
}

func (w *fakeFrameWriter) Flush() error {
	w.flushes++
	return nil
}

// lines splits the written stream into its newline-delimited records.
func (w *fakeFrameWriter) lines(t *testing.T) []string {
	t.Helper()
	out := strings.TrimRight(w.buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func chunkChan(chunks ...entity.EntityChunk) <-chan entity.EntityChunk {
	ch := make(chan entity.EntityChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func testStart() dto.StartFrame {
	return dto.StartFrame{Result: dto.StreamStart{
		ID:        "session-1",
		CreatedAt: 1700000000000,
		Subject:   "photosynthesis",
		Model:     "test-model",
		Status:    dto.StreamStatusStreaming,
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeFrame(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := sonic.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("frame is not valid JSON: %v (%q)", err, line)
	}
	return m
}

func TestRunStreamHappyPath(t *testing.T) {
	w := &fakeFrameWriter{}
	ch := chunkChan(
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 1, Label: "Chlorophyll", Color: "#2e7d32"}}},
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindEdge, Entity: entity.Edge{Source: 1, Target: 2, Label: "absorbs", Color: "black"}}},
		entity.EntityChunk{IsEnd: true},
	)

	runStream(w, discardLogger(), testStart(), ch)

	lines := w.lines(t)
	if len(lines) != 4 {
		t.Fatalf("expected 4 frames, got %d: %v", len(lines), lines)
	}

	start := decodeFrame(t, lines[0])
	result, ok := start["result"].(map[string]any)
	if !ok {
		t.Fatalf("start frame missing result object: %v", start)
	}
	if result["status"] != dto.StreamStatusStreaming {
		t.Errorf("start status = %v, want %q", result["status"], dto.StreamStatusStreaming)
	}
	if result["id"] != "session-1" {
		t.Errorf("start id = %v, want session-1", result["id"])
	}

	node := decodeFrame(t, lines[1])
	if node["type"] != entity.KindNode {
		t.Errorf("second frame type = %v, want %q", node["type"], entity.KindNode)
	}

	terminal := decodeFrame(t, lines[3])
	if terminal["result"] != dto.StreamResultComplete || terminal["status"] != dto.StreamStatusComplete {
		t.Errorf("terminal frame = %v, want completion marker", terminal)
	}

	if w.flushes != w.writes {
		t.Errorf("every frame must flush: %d writes, %d flushes", w.writes, w.flushes)
	}
}

func TestRunStreamErrorTerminal(t *testing.T) {
	w := &fakeFrameWriter{}
	ch := chunkChan(
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 1, Label: "Root"}}},
		entity.EntityChunk{Err: errors.New("backend exploded")},
		// Nothing after an error chunk may reach the wire.
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 2, Label: "Late"}}},
	)

	runStream(w, discardLogger(), testStart(), ch)

	lines := w.lines(t)
	if len(lines) != 3 {
		t.Fatalf("expected start + entity + error terminal, got %d frames: %v", len(lines), lines)
	}

	terminal := decodeFrame(t, lines[2])
	if terminal["result"] != dto.StreamResultError || terminal["status"] != dto.StreamStatusError {
		t.Errorf("terminal frame = %v, want error marker", terminal)
	}
	if strings.Contains(lines[2], "exploded") {
		t.Errorf("error detail leaked to the wire: %q", lines[2])
	}
}

func TestRunStreamSkipsUnclassifiedRecords(t *testing.T) {
	w := &fakeFrameWriter{}
	ch := chunkChan(
		entity.EntityChunk{Entity: nil},
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 1, Label: "Kept"}}},
		entity.EntityChunk{Entity: nil},
		entity.EntityChunk{IsEnd: true},
	)

	runStream(w, discardLogger(), testStart(), ch)

	lines := w.lines(t)
	if len(lines) != 3 {
		t.Fatalf("expected start + one entity + terminal, got %d frames: %v", len(lines), lines)
	}
}

func TestRunStreamClientDisconnect(t *testing.T) {
	// The second write fails, simulating a client that went away after the
	// start frame and first entity were delivered.
	w := &fakeFrameWriter{failAfter: 2}
	ch := chunkChan(
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 1, Label: "First"}}},
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 2, Label: "Second"}}},
		entity.EntityChunk{IsEnd: true},
	)

	runStream(w, discardLogger(), testStart(), ch)

	if got := len(w.lines(t)); got != 2 {
		t.Fatalf("expected 2 delivered frames before disconnect, got %d", got)
	}
}

func TestRunStreamClosedWithoutTerminal(t *testing.T) {
	w := &fakeFrameWriter{}
	ch := chunkChan(
		entity.EntityChunk{Entity: entity.GraphEntity{Type: entity.KindNode, Entity: entity.Node{ID: 1, Label: "Only"}}},
	)

	runStream(w, discardLogger(), testStart(), ch)

	lines := w.lines(t)
	if len(lines) != 3 {
		t.Fatalf("expected synthesized completion frame, got %d frames: %v", len(lines), lines)
	}
	terminal := decodeFrame(t, lines[2])
	if terminal["status"] != dto.StreamStatusComplete {
		t.Errorf("terminal frame = %v, want completion marker", terminal)
	}
}

func TestRunStreamStartFrameWrittenBeforeProducer(t *testing.T) {
	// An immediately failing producer still yields start + error terminal.
	w := &fakeFrameWriter{}
	ch := chunkChan(entity.EntityChunk{Err: errors.New("model unavailable")})

	runStream(w, discardLogger(), testStart(), ch)

	lines := w.lines(t)
	if len(lines) != 2 {
		t.Fatalf("expected start + error terminal, got %d frames: %v", len(lines), lines)
	}
	start := decodeFrame(t, lines[0])
	if _, ok := start["result"].(map[string]any); !ok {
		t.Errorf("first frame is not a start frame: %v", start)
	}
}
