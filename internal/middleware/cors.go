package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
)

// CORS allows cross-origin access from the configured client origin.
// An empty origin opens the API to any origin, matching an unconfigured
// single-page-app deployment.
func CORS(allowedOrigin string) app.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	return func(ctx context.Context, c *app.RequestContext) {
		c.Response.Header.Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Response.Header.Set("Access-Control-Max-Age", "86400")
		if allowedOrigin != "*" {
			c.Response.Header.Set("Vary", "Origin")
		}

		if string(c.Method()) == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next(ctx)
	}
}
