package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Recovery converts a handler panic into a 500 response instead of tearing
// down the connection handler.
func Recovery() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"request_id", GetRequestID(c),
					"method", string(c.Method()),
					"path", string(c.Path()),
					"panic", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
				)

				c.JSON(consts.StatusInternalServerError, utils.H{
					"code":    "INTERNAL_ERROR",
					"message": "internal server error",
				})
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}
