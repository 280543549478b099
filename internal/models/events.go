package models

import "time"

// Event subjects published to NATS Streaming
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventSessionCreated       = "session.created"
)

type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	TicketCount   int       `json:"ticket_count"`
	Timestamp     time.Time `json:"timestamp"`
}

type ReservationCancelledEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

type SessionCreatedEvent struct {
	SessionID int64     `json:"session_id"`
	ShowID    int64     `json:"show_id"`
	DomeID    int64     `json:"dome_id"`
	ShowTime  time.Time `json:"show_time"`
	Timestamp time.Time `json:"timestamp"`
}
