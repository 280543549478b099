package handlers

import (
	"net/http"

	"planetarium/internal/models"

	"github.com/gin-gonic/gin"
)

// Theme handlers

// CreateTheme - POST /api/themes
func (h *Handlers) CreateTheme(c *gin.Context) {
	var req models.CreateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := h.services.Themes.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, theme)
}

// ListThemes - GET /api/themes
func (h *Handlers) ListThemes(c *gin.Context) {
	themes, err := h.services.Themes.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, themes)
}

// GetTheme - GET /api/themes/:id
func (h *Handlers) GetTheme(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	theme, err := h.services.Themes.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, theme)
}

// UpdateTheme - PUT /api/themes/:id
func (h *Handlers) UpdateTheme(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CreateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := h.services.Themes.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, theme)
}

// DeleteTheme - DELETE /api/themes/:id
func (h *Handlers) DeleteTheme(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Themes.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Dome handlers

// CreateDome - POST /api/domes
func (h *Handlers) CreateDome(c *gin.Context) {
	var req models.CreateDomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dome, err := h.services.Domes.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dome)
}

// ListDomes - GET /api/domes
func (h *Handlers) ListDomes(c *gin.Context) {
	country := c.Query("country")

	domes, err := h.services.Domes.List(c.Request.Context(), country)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domes)
}

// GetDome - GET /api/domes/:id
func (h *Handlers) GetDome(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	dome, err := h.services.Domes.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dome)
}

// UpdateDome - PUT /api/domes/:id
func (h *Handlers) UpdateDome(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CreateDomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dome, err := h.services.Domes.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dome)
}

// DeleteDome - DELETE /api/domes/:id
func (h *Handlers) DeleteDome(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Domes.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Show handlers

// CreateShow - POST /api/shows
func (h *Handlers) CreateShow(c *gin.Context) {
	var req models.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.services.Shows.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, show)
}

// ListShows - GET /api/shows
// Supports title and theme filters, served from the search index when
// one is configured.
func (h *Handlers) ListShows(c *gin.Context) {
	title := c.Query("title")
	theme := c.Query("theme")

	shows, err := h.services.Shows.List(c.Request.Context(), title, theme)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, shows)
}

// GetShow - GET /api/shows/:id
func (h *Handlers) GetShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	show, err := h.services.Shows.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}

// UpdateShow - PUT /api/shows/:id
func (h *Handlers) UpdateShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CreateShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.services.Shows.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, show)
}

// DeleteShow - DELETE /api/shows/:id
func (h *Handlers) DeleteShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Shows.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
