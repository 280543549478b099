package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"planetarium/internal/errs"
	"planetarium/internal/logger"
	"planetarium/internal/middleware"
	"planetarium/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
	users    middleware.UserStore
}

func NewHandlers(services *service.Services, users middleware.UserStore) *Handlers {
	return &Handlers{
		services: services,
		users:    users,
	}
}

// writeError maps domain errors to HTTP status codes. Anything unmapped is
// logged and reported as a generic 500 so internals never leak to clients.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var notFound *errs.NotFoundError
	var seatTaken *errs.SeatTakenError
	var seatRange *errs.SeatRangeError
	var duplicate *errs.DuplicateSeatError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &seatTaken):
		c.JSON(http.StatusConflict, gin.H{"error": seatTaken.Error()})
	case errors.As(err, &seatRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": seatRange.Error()})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusBadRequest, gin.H{"error": duplicate.Error()})
	case errors.Is(err, errs.ErrEmptyReservation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, errs.ErrInconsistentState):
		logger.WithContext(c.Request.Context()).Error("Inconsistent seating state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Seating data is inconsistent"})
	default:
		logger.WithContext(c.Request.Context()).Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// HealthCheck - GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
