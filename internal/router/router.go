package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"orthocode/internal/handler"
	"orthocode/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger zerolog.Logger,
	corsOrigins []string,
	codingH *handler.CodingHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	r.NoMethod(handler.MethodNotAllowed)

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/generate-codes", codingH.Generate)

	// Path kept for clients of the original edge-function deployment.
	functions := r.Group("/functions/v1")
	functions.POST("/generate-codes", codingH.Generate)

	return r
}
