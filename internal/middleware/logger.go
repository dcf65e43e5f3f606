package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

// RequestIDKey is the header carrying the request id.
const RequestIDKey = "X-Request-ID"

// Logger logs one line per request with a request id, client key, and
// latency. Health probes are skipped to keep the log readable.
func Logger() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		skip := path == "/health/live" || path == "/health/ready" || path == "/ping"

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		c.Next(ctx)

		if skip {
			return
		}

		latency := time.Since(start)
		statusCode := c.Response.StatusCode()

		logger := slog.Default().With(
			"request_id", requestID,
			"method", string(c.Method()),
			"path", path,
			"client_key", ClientKey(c),
			"status", statusCode,
			"latency_ms", latency.Milliseconds(),
		)

		switch {
		case statusCode >= 500:
			logger.Error("request completed with server error")
		case statusCode >= 400:
			logger.Warn("request completed with client error")
		default:
			logger.Info("request completed")
		}
	}
}

// GetRequestID returns the request id assigned by Logger.
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
