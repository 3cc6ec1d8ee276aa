// Package response writes JSON error bodies for classified errors.
package response

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"social_backend/internal/shared/apperror"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of requests that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// Error maps err to its status and writes {"error": message}, aborting the chain.
// Causes of internal errors are logged but never written to the client.
func Error(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := kind.Status()

	attrs := []any{
		"kind", kind.String(),
		"status", status,
		"error", err,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString("request_id"),
	}
	if kind.Exposed() {
		slog.Warn("request failed", attrs...)
	} else {
		slog.Error("request failed", attrs...)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: apperror.Message(err)})
}
