package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"advanced-prompt/internal/features/prompt/application"
	"advanced-prompt/internal/features/prompt/domain"
)

// EditorSource finds the editor of a session. Lookup failures are reported
// as 404.
type EditorSource interface {
	EditorFor(sessionID string) (*application.Editor, error)
}

// PromptHandler serves the row editing endpoints of a session.
type PromptHandler struct {
	editors EditorSource
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(editors EditorSource) *PromptHandler {
	return &PromptHandler{editors: editors}
}

// RegisterRoutes mounts the session-scoped endpoints on group, which must
// carry an :id parameter, and the stateless ones on api.
func (h *PromptHandler) RegisterRoutes(api, group *gin.RouterGroup) {
	api.POST("/style", h.StyleHandler)

	group.PUT("/text", h.SetTextHandler)
	group.POST("/rows/move", h.MoveRowHandler)
	group.POST("/wrap", h.WrapSelectionHandler)
	group.POST("/rows/:index/focus", h.FocusHandler)
	group.POST("/rows/:index/edit", h.EditHandler)
	group.POST("/rows/:index/commit", h.CommitHandler)
	group.DELETE("/rows/:index", h.DeleteRowHandler)
	group.POST("/rows/:index/weight", h.AdjustWeightHandler)
	group.POST("/rows/:index/emphasis", h.ToggleEmphasisHandler)
	group.POST("/rows/:index/wrapper", h.AdjustWrapperHandler)
	group.POST("/rows/:index/add-weight", h.AddWeightHandler)
}

type textRequest struct {
	Text string `json:"text"`
}

type styleResponse struct {
	Phrases    []string `json:"phrases"`
	Markup     []string `json:"markup"`
	TokenCount int      `json:"token_count"`
}

type moveRequest struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

type editRequest struct {
	Value  string `json:"value"`
	Markup bool   `json:"markup"`
}

type wheelRequest struct {
	Span      int    `json:"span"`
	Direction string `json:"direction" binding:"required,oneof=up down"`
	Steps     int    `json:"steps"`
	Kind      string `json:"kind"`
}

type wrapRequest struct {
	Selection string          `json:"selection" binding:"required"`
	Kind      domain.WrapKind `json:"kind" binding:"required,oneof=emphasis de-emphasis option blend"`
}

type rangeRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// StyleHandler tokenizes and styles a text without touching any session.
func (h *PromptHandler) StyleHandler(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	phrases := domain.Tokenize(req.Text)
	c.JSON(http.StatusOK, styleResponse{
		Phrases:    phrases,
		Markup:     domain.StyleList(phrases),
		TokenCount: domain.CountTokens(req.Text),
	})
}

// SetTextHandler replaces the flat prompt text.
func (h *PromptHandler) SetTextHandler(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	editor.SetText(req.Text)
	c.JSON(http.StatusOK, editor.Snapshot())
}

// FocusHandler starts editing a row.
func (h *PromptHandler) FocusHandler(c *gin.Context) {
	h.withRow(c, func(editor *application.Editor, index int) error {
		return editor.Focus(index)
	})
}

// EditHandler records the live value of a row.
func (h *PromptHandler) EditHandler(c *gin.Context) {
	var req editRequest
	h.withRowBody(c, &req, func(editor *application.Editor, index int) error {
		if req.Markup {
			return editor.EditMarkup(index, req.Value)
		}
		return editor.Edit(index, req.Value)
	})
}

// CommitHandler writes the rows back to the flat text.
func (h *PromptHandler) CommitHandler(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, editor.Commit())
}

// MoveRowHandler drags a row onto another position.
func (h *PromptHandler) MoveRowHandler(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := editor.MoveRow(req.Source, req.Target); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, editor.Snapshot())
}

// DeleteRowHandler removes a row.
func (h *PromptHandler) DeleteRowHandler(c *gin.Context) {
	h.withRow(c, func(editor *application.Editor, index int) error {
		return editor.DeleteRow(index)
	})
}

// AdjustWeightHandler scrolls a weight span of a row.
func (h *PromptHandler) AdjustWeightHandler(c *gin.Context) {
	var req wheelRequest
	h.withRowBody(c, &req, func(editor *application.Editor, index int) error {
		steps := req.Steps
		if steps == 0 {
			steps = 1
		}
		return editor.AdjustWeight(index, req.Span, steps*int(direction(req.Direction)))
	})
}

// ToggleEmphasisHandler scrolls an emphasis or de-emphasis span of a row.
func (h *PromptHandler) ToggleEmphasisHandler(c *gin.Context) {
	var req wheelRequest
	h.withRowBody(c, &req, func(editor *application.Editor, index int) error {
		kind := domain.SpanKind(req.Kind)
		if kind == "" {
			kind = domain.SpanEmphasis
		}
		return editor.ToggleEmphasis(index, kind, req.Span, direction(req.Direction))
	})
}

// AdjustWrapperHandler scrolls the wrapper of a row.
func (h *PromptHandler) AdjustWrapperHandler(c *gin.Context) {
	var req wheelRequest
	h.withRowBody(c, &req, func(editor *application.Editor, index int) error {
		return editor.AdjustWrapper(index, direction(req.Direction))
	})
}

// AddWeightHandler appends a default weight after a selection in a row.
func (h *PromptHandler) AddWeightHandler(c *gin.Context) {
	var req rangeRequest
	h.withRowBody(c, &req, func(editor *application.Editor, index int) error {
		return editor.AddWeight(index, req.Start, req.End)
	})
}

// WrapSelectionHandler wraps the first occurrence of a selection.
func (h *PromptHandler) WrapSelectionHandler(c *gin.Context) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	var req wrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	editor.WrapSelection(req.Selection, req.Kind)
	c.JSON(http.StatusOK, editor.Snapshot())
}

func (h *PromptHandler) editor(c *gin.Context) (*application.Editor, bool) {
	editor, err := h.editors.EditorFor(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return editor, true
}

func (h *PromptHandler) withRow(c *gin.Context, fn func(editor *application.Editor, index int) error) {
	h.withRowBody(c, nil, fn)
}

// withRowBody resolves the editor and row index, binds body when given and
// answers with the editor snapshot after fn.
func (h *PromptHandler) withRowBody(c *gin.Context, body any, fn func(editor *application.Editor, index int) error) {
	editor, ok := h.editor(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row index: " + c.Param("index")})
		return
	}
	if body != nil {
		if err := c.ShouldBindJSON(body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := fn(editor, index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, editor.Snapshot())
}

func direction(s string) domain.Direction {
	if s == "down" {
		return domain.Down
	}
	return domain.Up
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRowOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
