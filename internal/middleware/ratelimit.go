package middleware

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/johnwlockwood/knowledge-graph/internal/config"
	"github.com/johnwlockwood/knowledge-graph/internal/handler/dto"
	"github.com/johnwlockwood/knowledge-graph/internal/ratelimit"
)

// ClientKey derives the admission identity for a request: first hop of
// X-Forwarded-For, then X-Real-IP, then the transport peer address. This is
// an approximation, not a security boundary; shared NATs collide and headers
// can be spoofed. Falls back to "unknown" when nothing usable is present.
func ClientKey(c *app.RequestContext) string {
	if xff := string(c.Request.Header.Peek("X-Forwarded-For")); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	if rip := strings.TrimSpace(string(c.Request.Header.Peek("X-Real-IP"))); rip != "" {
		return rip
	}
	if addr := c.RemoteAddr(); addr != nil {
		s := addr.String()
		if host, _, err := net.SplitHostPort(s); err == nil {
			return host
		}
		if s != "" {
			return s
		}
	}
	return "unknown"
}

// RateLimit enforces per-client fixed-window admission. A client whose
// window already holds cfg.MaxRequests requests is rejected with 429 and a
// Retry-After of the window size. The rejected request still counts toward
// the window: being turned away does not refund quota.
func RateLimit(counter *ratelimit.Counter, cfg config.RateLimitConfig) app.HandlerFunc {
	window := cfg.Window()
	retryAfter := strconv.Itoa(cfg.WindowSeconds)

	return func(ctx context.Context, c *app.RequestContext) {
		key := ClientKey(c)

		count := counter.IncrementAndGet(key, window)
		if count > cfg.MaxRequests {
			slog.Warn("request rejected by rate limit",
				"client_key", key,
				"count", count,
				"limit", cfg.MaxRequests,
				"path", string(c.Path()),
			)

			c.Response.Header.Set("Retry-After", retryAfter)
			c.JSON(consts.StatusTooManyRequests, dto.RateLimitError{
				Error:      "rate limit exceeded",
				Message:    "too many requests, slow down",
				RetryAfter: cfg.WindowSeconds,
			})
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}
