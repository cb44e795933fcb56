package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"advanced-prompt/internal/features/config/application"
	"advanced-prompt/internal/features/config/domain"
	cookdomain "advanced-prompt/internal/features/cook/domain"
)

// AppConfigHandler holds the config service.
type AppConfigHandler struct {
	configService application.ConfigService
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(configService application.ConfigService) *AppConfigHandler {
	return &AppConfigHandler{
		configService: configService,
	}
}

// GetAppConfigHandler handles fetching the resolved application configuration.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	appConfig, err := h.configService.Current()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load app config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, appConfig)
}

// SaveAppConfigHandler handles saving the application configuration.
func (h *AppConfigHandler) SaveAppConfigHandler(c *gin.Context) {
	var appConfig domain.AppConfig
	if err := c.ShouldBindJSON(&appConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.configService.SaveConfig(&appConfig)
	if errors.Is(err, cookdomain.ErrInvalidBounds) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save app config: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "App config saved successfully", "config": saved})
}

// RegisterRoutes mounts the config endpoints on group.
func (h *AppConfigHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/app", h.GetAppConfigHandler)
	group.POST("/app", h.SaveAppConfigHandler)
}
