package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	configapp "advanced-prompt/internal/features/config/application"
	config_http "advanced-prompt/internal/features/config/presentation/http"
	prompt_http "advanced-prompt/internal/features/prompt/presentation/http"
	sessionapp "advanced-prompt/internal/features/session/application"
	session_http "advanced-prompt/internal/features/session/presentation/http"
)

// NewRouter builds the HTTP API.
func NewRouter(configService configapp.ConfigService, sessionService sessionapp.SessionService, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "pong",
			"sessions": sessionService.Count(),
		})
	})

	api := r.Group("/api")

	// Config API routes
	config_http.NewAppConfigHandler(configService).RegisterRoutes(api.Group("/config"))

	// Session API routes
	sessions := api.Group("/sessions")
	session := sessions.Group("/:id")
	sessionHandler := session_http.NewSessionHandler(sessionService)
	sessionHandler.RegisterRoutes(sessions, session)
	prompt_http.NewPromptHandler(sessionHandler).RegisterRoutes(api, session)

	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("Request served")
	}
}
