package service

import (
	"context"

	"planetarium/internal/models"
)

// Storage contracts. The business layer only sees these interfaces, so the
// booking logic is storage-agnostic and runs the same against Postgres and
// the in-memory store used in tests.

type ThemeStore interface {
	Create(ctx context.Context, theme *models.ShowTheme) error
	GetByID(ctx context.Context, id int64) (*models.ShowTheme, error)
	List(ctx context.Context) ([]models.ShowTheme, error)
	Update(ctx context.Context, theme *models.ShowTheme) error
	Delete(ctx context.Context, id int64) error
}

type ShowStore interface {
	Create(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error
	GetByID(ctx context.Context, id int64) (*models.AstronomyShow, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.AstronomyShow, error)
	List(ctx context.Context, title, theme string) ([]models.AstronomyShow, error)
	Update(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type DomeStore interface {
	Create(ctx context.Context, dome *models.PlanetariumDome) error
	GetByID(ctx context.Context, id int64) (*models.PlanetariumDome, error)
	List(ctx context.Context, country string) ([]models.PlanetariumDome, error)
	Update(ctx context.Context, dome *models.PlanetariumDome) error
	Delete(ctx context.Context, id int64) error
}

type SessionStore interface {
	Create(ctx context.Context, session *models.ShowSession) error
	GetByID(ctx context.Context, id int64) (*models.ShowSession, error)
	List(ctx context.Context, showID int64, date string) ([]models.SessionSummary, error)
	Update(ctx context.Context, session *models.ShowSession) error
	Delete(ctx context.Context, id int64) error
}

type ReservationStore interface {
	CreateWithTickets(ctx context.Context, reservation *models.Reservation, tickets []models.Ticket) error
	TakenSeats(ctx context.Context, sessionID int64) ([]models.SeatRef, error)
	CountTickets(ctx context.Context, sessionID int64) (int, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ReservationListItem, error)
	Delete(ctx context.Context, id int64) error
}

// ShowSearch is the optional full-text index over shows.
type ShowSearch interface {
	IndexShow(ctx context.Context, show *models.AstronomyShow) error
	DeleteShow(ctx context.Context, id int64) error
	SearchShows(ctx context.Context, title, theme string) ([]int64, error)
}

// EventPublisher emits domain events. Publish failures never fail the
// operation that triggered them.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

type Stores struct {
	Themes       ThemeStore
	Shows        ShowStore
	Domes        DomeStore
	Sessions     SessionStore
	Reservations ReservationStore
}

type Services struct {
	Themes       *ThemeService
	Shows        *ShowService
	Domes        *DomeService
	Sessions     *SessionService
	Reservations *ReservationService
}

func NewServices(stores Stores, search ShowSearch, publisher EventPublisher) *Services {
	return &Services{
		Themes:       NewThemeService(stores.Themes),
		Shows:        NewShowService(stores.Shows, stores.Themes, search),
		Domes:        NewDomeService(stores.Domes),
		Sessions:     NewSessionService(stores.Sessions, stores.Shows, stores.Domes, stores.Reservations, publisher),
		Reservations: NewReservationService(stores.Reservations, stores.Sessions, stores.Domes, publisher),
	}
}
