package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/logger"
	"planetarium/internal/metrics"
	"planetarium/internal/models"
)

// ReservationService is the seat-reservation ledger. It validates every
// requested coordinate, rejects duplicates and occupied seats, and commits
// the reservation with all its tickets atomically. The storage layer's
// uniqueness constraint on (session, row, seat) decides races; the checks
// here exist to fail fast with precise errors.
type ReservationService struct {
	reservationStore ReservationStore
	sessionStore     SessionStore
	domeStore        DomeStore
	publisher        EventPublisher
}

func NewReservationService(reservationStore ReservationStore, sessionStore SessionStore, domeStore DomeStore, publisher EventPublisher) *ReservationService {
	return &ReservationService{
		reservationStore: reservationStore,
		sessionStore:     sessionStore,
		domeStore:        domeStore,
		publisher:        publisher,
	}
}

func (s *ReservationService) Create(ctx context.Context, userID int64, req *models.CreateReservationRequest) (*models.CreateReservationResponse, error) {
	if len(req.Tickets) == 0 {
		return nil, errs.ErrEmptyReservation
	}

	// Reject in-batch duplicates before touching storage.
	seen := make(map[models.SeatRef]map[int64]bool)
	for _, t := range req.Tickets {
		ref := models.SeatRef{Row: t.Row, Seat: t.Seat}
		if seen[ref] == nil {
			seen[ref] = make(map[int64]bool)
		}
		if seen[ref][t.SessionID] {
			return nil, &errs.DuplicateSeatError{SessionID: t.SessionID, Row: t.Row, Seat: t.Seat}
		}
		seen[ref][t.SessionID] = true
	}

	// Resolve each distinct session and its dome once. Requests usually
	// target one session but nothing in the data model requires that.
	domes := make(map[int64]*models.PlanetariumDome)
	for _, t := range req.Tickets {
		if _, ok := domes[t.SessionID]; ok {
			continue
		}
		session, err := s.sessionStore.GetByID(ctx, t.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if session == nil {
			return nil, errs.NotFound("session", t.SessionID)
		}
		dome, err := s.domeStore.GetByID(ctx, session.DomeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get dome: %w", err)
		}
		if dome == nil {
			return nil, errs.NotFound("dome", session.DomeID)
		}
		domes[t.SessionID] = dome
	}

	// Validate every coordinate against its session's grid; any failure
	// aborts the whole batch before anything is written.
	for _, t := range req.Tickets {
		if err := models.ValidateSeat(t.Row, t.Seat, domes[t.SessionID]); err != nil {
			return nil, err
		}
	}

	// Fast-path occupancy check against committed tickets. This is an
	// optimization only: two requests can both pass it, and the commit
	// below settles who wins.
	for sessionID := range domes {
		taken, err := s.reservationStore.TakenSeats(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check occupancy: %w", err)
		}
		occupied := make(map[models.SeatRef]bool, len(taken))
		for _, ref := range taken {
			occupied[ref] = true
		}
		for _, t := range req.Tickets {
			if t.SessionID == sessionID && occupied[models.SeatRef{Row: t.Row, Seat: t.Seat}] {
				metrics.SeatConflicts.Inc()
				return nil, &errs.SeatTakenError{SessionID: t.SessionID, Row: t.Row, Seat: t.Seat}
			}
		}
	}

	reservation := &models.Reservation{UserID: userID}
	tickets := make([]models.Ticket, len(req.Tickets))
	for i, t := range req.Tickets {
		tickets[i] = models.Ticket{SessionID: t.SessionID, Row: t.Row, Seat: t.Seat}
	}

	if err := s.reservationStore.CreateWithTickets(ctx, reservation, tickets); err != nil {
		var taken *errs.SeatTakenError
		if errors.As(err, &taken) {
			// Lost the race at the storage constraint.
			metrics.SeatConflicts.Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	metrics.ReservationsCreated.Inc()

	event := models.ReservationCreatedEvent{
		ReservationID: reservation.ID,
		UserID:        userID,
		TicketCount:   len(reservation.Tickets),
		Timestamp:     time.Now(),
	}
	if err := s.publisher.Publish(models.EventReservationCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish reservation created event",
			"error", err, "reservation_id", reservation.ID)
	}

	return &models.CreateReservationResponse{
		ID:        reservation.ID,
		CreatedAt: reservation.CreatedAt,
		Tickets:   reservation.Tickets,
	}, nil
}

func (s *ReservationService) List(ctx context.Context, userID int64) ([]models.ReservationListItem, error) {
	items, err := s.reservationStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return items, nil
}

// Get returns a reservation if the caller owns it or is staff.
func (s *ReservationService) Get(ctx context.Context, userID int64, isStaff bool, id int64) (*models.Reservation, error) {
	reservation, err := s.reservationStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil {
		return nil, errs.NotFound("reservation", id)
	}
	if reservation.UserID != userID && !isStaff {
		return nil, errs.ErrForbidden
	}
	return reservation, nil
}

// Cancel deletes a reservation and its tickets, freeing the seats.
func (s *ReservationService) Cancel(ctx context.Context, userID int64, isStaff bool, id int64) error {
	reservation, err := s.reservationStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	if reservation == nil {
		return errs.NotFound("reservation", id)
	}
	if reservation.UserID != userID && !isStaff {
		return errs.ErrForbidden
	}

	if err := s.reservationStore.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("reservation", id)
		}
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	event := models.ReservationCancelledEvent{
		ReservationID: id,
		UserID:        reservation.UserID,
		Timestamp:     time.Now(),
	}
	if err := s.publisher.Publish(models.EventReservationCancelled, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish reservation cancelled event",
			"error", err, "reservation_id", id)
	}

	return nil
}
