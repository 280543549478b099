package handlers

import (
	"net/http"

	"planetarium/internal/middleware"
	"planetarium/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateReservation - POST /api/reservations
// Books every requested seat atomically; if any seat is invalid or taken
// the whole request fails and nothing is booked.
func (h *Handlers) CreateReservation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListReservations - GET /api/reservations
// Returns the caller's reservations, newest first.
func (h *Handlers) ListReservations(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	reservations, err := h.services.Reservations.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservations)
}

// GetReservation - GET /api/reservations/:id
// Owners and staff only.
func (h *Handlers) GetReservation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	reservation, err := h.services.Reservations.Get(c.Request.Context(), userID, middleware.IsStaff(c, h.users), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, reservation)
}

// CancelReservation - DELETE /api/reservations/:id
// Deletes the reservation and its tickets, freeing the seats.
func (h *Handlers) CancelReservation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.services.Reservations.Cancel(c.Request.Context(), userID, middleware.IsStaff(c, h.users), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
