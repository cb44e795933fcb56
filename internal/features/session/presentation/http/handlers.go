package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	chatapp "advanced-prompt/internal/features/chat/application"
	cookdomain "advanced-prompt/internal/features/cook/domain"
	promptapp "advanced-prompt/internal/features/prompt/application"
	"advanced-prompt/internal/features/session/application"
	"advanced-prompt/internal/features/session/domain"
)

// SessionHandler holds the session service.
type SessionHandler struct {
	sessionService application.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService application.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// EditorFor returns the prompt editor of a session.
func (h *SessionHandler) EditorFor(sessionID string) (*promptapp.Editor, error) {
	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Editor(), nil
}

// RegisterRoutes mounts the session endpoints. sessions is the collection
// group and session the group carrying the :id parameter.
func (h *SessionHandler) RegisterRoutes(sessions, session *gin.RouterGroup) {
	sessions.POST("", h.CreateSessionHandler)

	session.GET("", h.GetSessionHandler)
	session.DELETE("", h.DeleteSessionHandler)
	session.PUT("/form", h.SetLiveHandler)
	session.POST("/cook/start", h.StartCookHandler)
	session.POST("/cook/cancel", h.CancelCookHandler)
	session.POST("/jobs/finished", h.JobFinishedHandler)
	session.POST("/chat/draft", h.DraftHandler)
	session.POST("/autopilot/start", h.StartAutoPilotHandler)
	session.POST("/autopilot/stop", h.StopAutoPilotHandler)
	session.POST("/roll", h.RollHandler)
}

type createSessionRequest struct {
	Text string `json:"text"`
}

// jobFinishedRequest optionally carries the form as it looks after the job.
type jobFinishedRequest struct {
	Live *cookdomain.Live `json:"live"`
}

// CreateSessionHandler handles the request to start a new session.
func (h *SessionHandler) CreateSessionHandler(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session := h.sessionService.CreateSession(req.Text)
	c.JSON(http.StatusCreated, session.Snapshot())
}

// GetSessionHandler returns the session snapshot.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// DeleteSessionHandler stops and removes a session.
func (h *SessionHandler) DeleteSessionHandler(c *gin.Context) {
	if err := h.sessionService.DeleteSession(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// SetLiveHandler records the active adapter count and prompt strength visibility.
func (h *SessionHandler) SetLiveHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var live cookdomain.Live
	if err := c.ShouldBindJSON(&live); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.SetLive(live)
	c.JSON(http.StatusOK, session.Snapshot())
}

// StartCookHandler begins a parameter sweep.
func (h *SessionHandler) StartCookHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	first, err := session.StartCook()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": first, "session": session.Snapshot()})
}

// CancelCookHandler stops the sweep.
func (h *SessionHandler) CancelCookHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.CancelCook()
	c.JSON(http.StatusOK, session.Snapshot())
}

// JobFinishedHandler is called by the host when a generation job ends.
func (h *SessionHandler) JobFinishedHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req jobFinishedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Live != nil {
		session.SetLive(*req.Live)
	}
	progress := session.JobFinished()
	c.JSON(http.StatusOK, gin.H{"progress": progress, "session": session.Snapshot()})
}

// DraftHandler streams a drafted prompt into the session text.
func (h *SessionHandler) DraftHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	result, err := session.Draft(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": result, "session": session.Snapshot()})
}

// StartAutoPilotHandler starts the draft and generate loop.
func (h *SessionHandler) StartAutoPilotHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.StartAutoPilot(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// StopAutoPilotHandler stops the loop.
func (h *SessionHandler) StopAutoPilotHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.StopAutoPilot()
	c.JSON(http.StatusOK, session.Snapshot())
}

// RollHandler picks a fresh set of style modifiers.
func (h *SessionHandler) RollHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Roll())
}

func (h *SessionHandler) session(c *gin.Context) (*application.Session, bool) {
	session, err := h.sessionService.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrModeConflict), errors.Is(err, chatapp.ErrAutoPilotRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cookdomain.ErrInvalidBounds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chatapp.ErrNoClient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, chatapp.ErrDraftFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
