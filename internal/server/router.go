package server

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/business-nexus/backend/internal/chat"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health         HealthService
	API            *APIHandlers
	Chat           *chat.Handler
	AllowedOrigins []string
}

// NewRouter wires the HTTP routes exposed by the backend, including the
// websocket chat endpoint.
func NewRouter(logger *slog.Logger, deps RouterDependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		router.Use(cors.Default())
	}

	router.GET("/healthz", healthHandler(logger, deps.Health))

	if deps.API != nil {
		api := router.Group("/api")
		api.POST("/auth/register", deps.API.register)
		api.POST("/auth/login", deps.API.login)

		authed := api.Group("", deps.API.requireAuth())
		authed.GET("/auth/me", deps.API.currentUser)
		authed.GET("/profile/:id", deps.API.getProfile)
		authed.PUT("/profile", deps.API.updateProfile)
		authed.GET("/entrepreneurs", deps.API.listEntrepreneurs)
		authed.GET("/investors", deps.API.listInvestors)
		authed.POST("/requests", deps.API.createRequest)
		authed.GET("/requests", deps.API.listRequests)
		authed.PATCH("/requests/:id", deps.API.updateRequestStatus)
		authed.GET("/chat/:userId", deps.API.chatHistory)
	}

	if deps.Chat != nil {
		router.GET("/ws", deps.Chat.Serve)
	}

	return router
}

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("requestId", requestID)

		c.Next()

		logger.Info("request completed",
			"requestId", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
