package models

import (
	"time"
)

// User represents an account in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// ShowTheme is a tag attached to astronomy shows
type ShowTheme struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// AstronomyShow is a production that gets scheduled into sessions
type AstronomyShow struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Duration    int         `json:"duration" db:"duration"` // minutes
	ImageURL    *string     `json:"image_url" db:"image_url"`
	Themes      []ShowTheme `json:"themes,omitempty"` // Not from the shows table, filled separately
}

// PlanetariumDome is a physical hall with a rectangular seating grid
type PlanetariumDome struct {
	ID                int64   `json:"id" db:"id"`
	Name              string  `json:"name" db:"name"`
	Address           *string `json:"address" db:"address"`
	CityStateProvince *string `json:"city_state_province" db:"city_state_province"`
	Country           *string `json:"country" db:"country"`
	Phone             *string `json:"phone" db:"phone"`
	Website           *string `json:"website" db:"website"`
	Rows              int     `json:"rows" db:"rows"`
	SeatsInRow        int     `json:"seats_in_row" db:"seats_in_row"`
}

// Capacity is derived from the grid dimensions, never stored.
func (d *PlanetariumDome) Capacity() int {
	return d.Rows * d.SeatsInRow
}

// ShowSession schedules a show into a dome at a point in time. The seating
// grid is inherited from the dome at read time, not copied.
type ShowSession struct {
	ID       int64     `json:"id" db:"id"`
	ShowID   int64     `json:"show_id" db:"show_id"`
	DomeID   int64     `json:"dome_id" db:"dome_id"`
	ShowTime time.Time `json:"show_time" db:"show_time"`
}

// Reservation owns the tickets created with it in one transaction
type Reservation struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Tickets   []Ticket  `json:"tickets,omitempty"` // Not from the reservations table, filled separately
}

// Ticket claims one physical seat within one session. For a fixed session the
// (row, seat) pair is unique across all tickets.
type Ticket struct {
	ID            int64 `json:"id" db:"id"`
	ReservationID int64 `json:"reservation_id" db:"reservation_id"`
	SessionID     int64 `json:"session_id" db:"session_id"`
	Row           int   `json:"row" db:"row_number"`
	Seat          int   `json:"seat" db:"seat_number"`
}
