package handler

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/johnwlockwood/knowledge-graph/internal/domain"
)

// Response is the envelope for non-streaming error and status bodies.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse maps a domain error to an HTTP status and a client-safe
// body. Anything unrecognized becomes a 500 with no internal detail.
func ErrorResponse(c *app.RequestContext, err error) {
	userMessage := func(err error) string {
		if domainErr, ok := err.(*domain.DomainError); ok {
			return domainErr.UserMessage()
		}
		return "an error occurred"
	}

	switch {
	case domain.IsInvalidInput(err):
		c.JSON(consts.StatusBadRequest, Response{
			Code:    "INVALID_INPUT",
			Message: userMessage(err),
		})
	case domain.IsNotFound(err):
		c.JSON(consts.StatusNotFound, Response{
			Code:    "NOT_FOUND",
			Message: userMessage(err),
		})
	case domain.IsVerificationRejected(err):
		c.JSON(consts.StatusForbidden, Response{
			Code:    "VERIFICATION_REJECTED",
			Message: userMessage(err),
		})
	case domain.IsGenerationFailed(err):
		// Upstream failure, not ours.
		c.JSON(consts.StatusBadGateway, Response{
			Code:    "GENERATION_FAILED",
			Message: userMessage(err),
		})
	default:
		c.JSON(consts.StatusInternalServerError, Response{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}

// BadRequestResponse returns a 400 with a plain message.
func BadRequestResponse(c *app.RequestContext, message string) {
	c.JSON(consts.StatusBadRequest, Response{
		Code:    "BAD_REQUEST",
		Message: message,
	})
}
