package handlers

import (
	"net/http"
	"strconv"

	"planetarium/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateSession - POST /api/sessions
func (h *Handlers) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.services.Sessions.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions - GET /api/sessions
// Filters: show (id) and date (YYYY-MM-DD). Each entry carries the number
// of seats still available.
func (h *Handlers) ListSessions(c *gin.Context) {
	var showID int64
	if raw := c.Query("show"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "show must be a positive integer"})
			return
		}
		showID = parsed
	}
	date := c.Query("date")

	sessions, err := h.services.Sessions.List(c.Request.Context(), showID, date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession - GET /api/sessions/:id
// Returns the session with its show, dome and the list of taken places.
func (h *Handlers) GetSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.services.Sessions.Detail(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateSession - PUT /api/sessions/:id
func (h *Handlers) UpdateSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.services.Sessions.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession - DELETE /api/sessions/:id
func (h *Handlers) DeleteSession(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Sessions.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
