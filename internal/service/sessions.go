package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/logger"
	"planetarium/internal/models"
)

type SessionService struct {
	sessionStore     SessionStore
	showStore        ShowStore
	domeStore        DomeStore
	reservationStore ReservationStore
	publisher        EventPublisher
}

func NewSessionService(sessionStore SessionStore, showStore ShowStore, domeStore DomeStore, reservationStore ReservationStore, publisher EventPublisher) *SessionService {
	return &SessionService{
		sessionStore:     sessionStore,
		showStore:        showStore,
		domeStore:        domeStore,
		reservationStore: reservationStore,
		publisher:        publisher,
	}
}

func (s *SessionService) Create(ctx context.Context, req *models.CreateSessionRequest) (*models.ShowSession, error) {
	if err := s.checkReferences(ctx, req.ShowID, req.DomeID); err != nil {
		return nil, err
	}

	session := &models.ShowSession{
		ShowID:   req.ShowID,
		DomeID:   req.DomeID,
		ShowTime: req.ShowTime,
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	event := models.SessionCreatedEvent{
		SessionID: session.ID,
		ShowID:    session.ShowID,
		DomeID:    session.DomeID,
		ShowTime:  session.ShowTime,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventSessionCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish session created event",
			"error", err, "session_id", session.ID)
	}

	return session, nil
}

// List returns session summaries with tickets_available recomputed from the
// current ticket counts. A count above capacity means the uniqueness
// invariant was broken somewhere and is surfaced as an internal fault.
func (s *SessionService) List(ctx context.Context, showID int64, date string) ([]models.SessionSummary, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, errs.ErrInvalidDate
		}
	}

	sessions, err := s.sessionStore.List(ctx, showID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	for i := range sessions {
		available := sessions[i].DomeCapacity - sessions[i].TicketCount
		if available < 0 {
			return nil, fmt.Errorf("session %d has %d tickets for capacity %d: %w",
				sessions[i].ID, sessions[i].TicketCount, sessions[i].DomeCapacity, errs.ErrInconsistentState)
		}
		sessions[i].TicketsAvailable = available
	}

	return sessions, nil
}

// Detail returns the session with its dome grid and the occupied seats, so
// a client can render the seat map.
func (s *SessionService) Detail(ctx context.Context, id int64) (*models.SessionDetail, error) {
	session, err := s.sessionStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, errs.NotFound("session", id)
	}

	show, err := s.showStore.GetByID(ctx, session.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, errs.NotFound("show", session.ShowID)
	}

	dome, err := s.domeStore.GetByID(ctx, session.DomeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dome: %w", err)
	}
	if dome == nil {
		return nil, errs.NotFound("dome", session.DomeID)
	}

	taken, err := s.reservationStore.TakenSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get taken seats: %w", err)
	}

	if len(taken) > dome.Capacity() {
		return nil, fmt.Errorf("session %d has %d tickets for capacity %d: %w",
			id, len(taken), dome.Capacity(), errs.ErrInconsistentState)
	}

	return &models.SessionDetail{
		ID:          session.ID,
		ShowTime:    session.ShowTime,
		Show:        *show,
		Dome:        *domeResponse(dome),
		TakenPlaces: taken,
	}, nil
}

func (s *SessionService) Update(ctx context.Context, id int64, req *models.CreateSessionRequest) (*models.ShowSession, error) {
	if err := s.checkReferences(ctx, req.ShowID, req.DomeID); err != nil {
		return nil, err
	}

	session := &models.ShowSession{
		ID:       id,
		ShowID:   req.ShowID,
		DomeID:   req.DomeID,
		ShowTime: req.ShowTime,
	}

	if err := s.sessionStore.Update(ctx, session); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("session", id)
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, id int64) error {
	if err := s.sessionStore.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("session", id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionService) checkReferences(ctx context.Context, showID, domeID int64) error {
	show, err := s.showStore.GetByID(ctx, showID)
	if err != nil {
		return fmt.Errorf("failed to check show: %w", err)
	}
	if show == nil {
		return errs.NotFound("show", showID)
	}

	dome, err := s.domeStore.GetByID(ctx, domeID)
	if err != nil {
		return fmt.Errorf("failed to check dome: %w", err)
	}
	if dome == nil {
		return errs.NotFound("dome", domeID)
	}

	return nil
}
