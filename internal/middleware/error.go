package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ErrorHandler renders the last error pushed with c.Error. Errors that are
// not AppErrors become 500s; their text is only shown in development.
func ErrorHandler(devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last().Err

		status := http.StatusInternalServerError
		body := ErrorResponse{Error: "Internal server error"}
		if appErr, ok := apperrors.As(lastErr); ok {
			status = appErr.StatusCode()
			body = ErrorResponse{Error: appErr.Message, Details: appErr.Details}
		}
		if status >= http.StatusInternalServerError && devMode {
			body.Error = lastErr.Error()
		}

		logger := RequestLogger(c)
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Err(lastErr).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Int("status", status).
			Msg("Request error")

		if c.Writer.Written() {
			return
		}
		c.JSON(status, body)
	}
}

// RespondError writes err immediately and stops the chain. Used by
// middleware that runs before handlers.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
