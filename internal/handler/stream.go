package handler

import (
	"log/slog"

	"github.com/bytedance/sonic"

	"github.com/johnwlockwood/knowledge-graph/internal/domain/entity"
	"github.com/johnwlockwood/knowledge-graph/internal/handler/dto"
)

// frameWriter is the transport surface a streaming session writes to. Each
// frame is flushed as soon as it is written so clients see entities as they
// are generated.
type frameWriter interface {
	Write(p []byte) (int, error)
	Flush() error
}

// writeFrame writes one newline-terminated JSON record and flushes it.
func writeFrame(w frameWriter, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return w.Flush()
}

// runStream drives one streaming session over w: the start frame, one frame
// per entity in arrival order, then exactly one terminal frame. The terminal
// frame is absorbing; nothing is written after it. A write failure means the
// client is gone, so the session stops immediately and lets the caller's
// context cancellation shut the producer down. Chunks with a nil payload are
// records the backend produced but could not be classified; they are skipped
// and the stream continues.
func runStream(w frameWriter, logger *slog.Logger, start dto.StartFrame, ch <-chan entity.EntityChunk) {
	sessionID := start.Result.ID

	if err := writeFrame(w, start); err != nil {
		logger.Info("client gone before session start", "session_id", sessionID)
		return
	}

	entities := 0
	for chunk := range ch {
		switch {
		case chunk.Err != nil:
			// The cause stays in the logs; the wire carries only a
			// generic marker.
			logger.Warn("stream terminated by generation failure",
				"session_id", sessionID,
				"entities_sent", entities,
				"error", chunk.Err,
			)
			if err := writeFrame(w, dto.TerminalFrame{
				Result: dto.StreamResultError,
				Status: dto.StreamStatusError,
			}); err != nil {
				logger.Info("client gone during error frame", "session_id", sessionID)
			}
			return

		case chunk.IsEnd:
			if err := writeFrame(w, dto.TerminalFrame{
				Result: dto.StreamResultComplete,
				Status: dto.StreamStatusComplete,
			}); err != nil {
				logger.Info("client gone during completion frame", "session_id", sessionID)
				return
			}
			logger.Info("stream completed",
				"session_id", sessionID,
				"entities_sent", entities,
			)
			return

		case chunk.Entity == nil:
			continue

		default:
			if err := writeFrame(w, chunk.Entity); err != nil {
				logger.Info("client disconnected mid-stream",
					"session_id", sessionID,
					"entities_sent", entities,
				)
				return
			}
			entities++
		}
	}

	// The producer closed the channel without a terminal chunk. Treat it as
	// a clean end so the client still gets exactly one terminal frame.
	if err := writeFrame(w, dto.TerminalFrame{
		Result: dto.StreamResultComplete,
		Status: dto.StreamStatusComplete,
	}); err != nil {
		logger.Info("client gone during completion frame", "session_id", sessionID)
	}
}
