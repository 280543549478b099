package repository

import (
	"planetarium/internal/database"
)

type Repositories struct {
	Themes       *ThemeRepository
	Shows        *ShowRepository
	Domes        *DomeRepository
	Sessions     *SessionRepository
	Reservations *ReservationRepository
	Users        *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Themes:       NewThemeRepository(db),
		Shows:        NewShowRepository(db),
		Domes:        NewDomeRepository(db),
		Sessions:     NewSessionRepository(db),
		Reservations: NewReservationRepository(db),
		Users:        NewUserRepository(db),
	}
}
