// Package handlers provides the ops HTTP API: live session inspection
// and the session history listing.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/remote-tui/termhost/internal/model"
	"github.com/remote-tui/termhost/internal/repository"
	"github.com/remote-tui/termhost/internal/session"
)

const defaultHistoryLimit = 50

// StatusHandler serves read-only views of the session registry and the
// history store.
type StatusHandler struct {
	registry *session.Registry
	history  *repository.HistoryRepository // may be nil
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(registry *session.Registry, history *repository.HistoryRepository) *StatusHandler {
	return &StatusHandler{
		registry: registry,
		history:  history,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health handles GET /health.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.registry.Len(),
	})
}

// ListSessions handles GET /api/sessions - snapshot of live sessions.
func (h *StatusHandler) ListSessions(c *gin.Context) {
	infos := h.registry.Infos()

	type liveSession struct {
		session.Info
		Idle string `json:"idle"`
	}
	out := make([]liveSession, 0, len(infos))
	for _, info := range infos {
		out = append(out, liveSession{
			Info: info,
			Idle: time.Since(info.LastActivity).Round(time.Second).String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(out),
		"sessions": out,
	})
}

// Screen handles GET /api/sessions/:id/screen - the most recently
// rendered output of one live session, raw ANSI included.
func (h *StatusHandler) Screen(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return
	}

	var snapshot []byte
	found := h.registry.WithSession(id, func(s *session.Session) {
		snapshot = s.Screen.Snapshot()
	})
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: model.ErrSessionNotFound.Error()})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", snapshot)
}

// History handles GET /api/history - recently started sessions, newest
// first.
func (h *StatusHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "history store not configured"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, model.ErrRecordNotFound) {
			records = nil
		} else {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// RegisterRoutes registers the status routes on a Gin router group.
func (h *StatusHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sessions", h.ListSessions)
	rg.GET("/sessions/:id/screen", h.Screen)
	rg.GET("/history", h.History)
}
