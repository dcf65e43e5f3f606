package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzAdapter routes Hertz's internal hlog output through slog so the
// framework's own messages land in the same stream as application logs.
type HertzAdapter struct {
	logger *slog.Logger
}

// NewHertzAdapter wraps logger for use with hlog.SetLogger.
func NewHertzAdapter(logger *slog.Logger) *HertzAdapter {
	return &HertzAdapter{logger: logger}
}

func (h *HertzAdapter) Trace(v ...interface{}) {
	h.logger.Debug(joinMessage(v...))
}

func (h *HertzAdapter) Debug(v ...interface{}) {
	h.logger.Debug(joinMessage(v...))
}

func (h *HertzAdapter) Info(v ...interface{}) {
	h.logger.Info(joinMessage(v...))
}

// Notice maps to Info; slog has no notice level.
func (h *HertzAdapter) Notice(v ...interface{}) {
	h.logger.Info(joinMessage(v...))
}

func (h *HertzAdapter) Warn(v ...interface{}) {
	h.logger.Warn(joinMessage(v...))
}

func (h *HertzAdapter) Error(v ...interface{}) {
	h.logger.Error(joinMessage(v...))
}

func (h *HertzAdapter) Fatal(v ...interface{}) {
	h.logger.Error(joinMessage(v...))
}

func (h *HertzAdapter) Tracef(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Debugf(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Infof(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Noticef(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Warnf(format string, v ...interface{}) {
	h.logger.Warn(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Errorf(format string, v ...interface{}) {
	h.logger.Error(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) Fatalf(format string, v ...interface{}) {
	h.logger.Error(fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.logger.DebugContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.logger.DebugContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.logger.InfoContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.logger.InfoContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.logger.WarnContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.logger.ErrorContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.logger.ErrorContext(ctx, fmt.Sprintf(format, v...))
}

// SetLevel is a no-op; the level is decided at Setup time.
func (h *HertzAdapter) SetLevel(level hlog.Level) {}

// SetOutput is a no-op; the writer is decided at Setup time.
func (h *HertzAdapter) SetOutput(writer io.Writer) {}

func joinMessage(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
