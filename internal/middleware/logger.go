package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"orthocode/internal/domain"
)

// RequestID injects an X-Request-ID header into the request and response, and
// attaches a logger tagged with the id to the request context.
func RequestID(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// Logger logs each HTTP request with method, path, status, and latency.
func Logger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		} else if status >= http.StatusBadRequest {
			evt = logger.Warn()
		}

		requestID, _ := c.Get("request_id")
		evt.
			Str("request_id", fmt.Sprintf("%v", requestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("remote_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery recovers from panics and answers with an INTERNAL_ERROR body.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		var stack [4096]byte
		n := runtime.Stack(stack[:], false)

		requestID, _ := c.Get("request_id")
		logger.Error().
			Str("request_id", fmt.Sprintf("%v", requestID)).
			Str("panic", fmt.Sprintf("%v", recovered)).
			Str("stack", string(stack[:n])).
			Msg("panic recovered")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":         true,
			"error_code":    string(domain.CodeInternalError),
			"error_message": "unexpected internal error",
			"user_message":  domain.UserMessage(domain.CodeInternalError),
		})
	})
}
