package models

import (
	"time"
)

// Request/response types for the HTTP API.

type CreateThemeRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateDomeRequest struct {
	Name              string  `json:"name" binding:"required"`
	Address           *string `json:"address"`
	CityStateProvince *string `json:"city_state_province"`
	Country           *string `json:"country"`
	Phone             *string `json:"phone"`
	Website           *string `json:"website"`
	Rows              int     `json:"rows" binding:"required,gt=0"`
	SeatsInRow        int     `json:"seats_in_row" binding:"required,gt=0"`
}

type DomeResponse struct {
	PlanetariumDome
	SeatingCapacity int `json:"seating_capacity"`
}

type CreateShowRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Duration    int     `json:"duration" binding:"required,gt=0"`
	ImageURL    *string `json:"image_url"`
	ThemeIDs    []int64 `json:"theme_ids"`
}

type CreateSessionRequest struct {
	ShowID   int64     `json:"show_id" binding:"required"`
	DomeID   int64     `json:"dome_id" binding:"required"`
	ShowTime time.Time `json:"show_time" binding:"required"`
}

// TicketRequest is one seat coordinate inside a reservation request.
type TicketRequest struct {
	SessionID int64 `json:"session_id" binding:"required"`
	Row       int   `json:"row" binding:"required"`
	Seat      int   `json:"seat" binding:"required"`
}

type CreateReservationRequest struct {
	Tickets []TicketRequest `json:"tickets"`
}

type CreateReservationResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Tickets   []Ticket  `json:"tickets"`
}

// SessionSummary is one row of the session list, with the availability
// figures computed at read time.
type SessionSummary struct {
	ID               int64     `json:"id"`
	ShowTime         time.Time `json:"show_time"`
	ShowTitle        string    `json:"astronomy_show_title"`
	ShowImageURL     *string   `json:"astro_show_image"`
	DomeName         string    `json:"planetarium_dome_name"`
	DomeCapacity     int       `json:"planetarium_dome_capacity"`
	TicketCount      int       `json:"-"`
	TicketsAvailable int       `json:"tickets_available"`
}

// SessionDetail carries everything a client needs to render a seat map.
type SessionDetail struct {
	ID          int64         `json:"id"`
	ShowTime    time.Time     `json:"show_time"`
	Show        AstronomyShow `json:"astronomy_show"`
	Dome        DomeResponse  `json:"planetarium_dome"`
	TakenPlaces []SeatRef     `json:"taken_places"`
}

// TicketDetail is a ticket joined with its session's show and dome for
// reservation listings.
type TicketDetail struct {
	ID        int64     `json:"id"`
	ShowTime  time.Time `json:"show_time"`
	ShowTitle string    `json:"astronomy_show_name"`
	DomeName  string    `json:"planetarium_dome_name"`
	Row       int       `json:"row"`
	Seat      int       `json:"seat"`
}

type ReservationListItem struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Owner     string         `json:"reservation_owner"`
	Tickets   []TicketDetail `json:"tickets"`
}
