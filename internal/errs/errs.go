package errs

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// ErrEmptyReservation rejects reservation requests that carry no tickets.
var ErrEmptyReservation = errors.New("reservation must contain at least one ticket")

// ErrInvalidDate rejects date filters that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// ErrInconsistentState signals that the number of sold tickets exceeds the
// dome capacity. This can only happen if the uniqueness invariant was broken
// elsewhere, so it is surfaced as an internal fault rather than a user error.
var ErrInconsistentState = errors.New("ticket count exceeds dome capacity")

// SeatRangeError is returned when a requested coordinate falls outside the
// dome grid. Field is "row" or "seat".
type SeatRangeError struct {
	Field string
	Value int
	Max   int
}

func (e *SeatRangeError) Error() string {
	return fmt.Sprintf("%s must be between 1 and %d, got %d", e.Field, e.Max, e.Value)
}

// SeatTakenError identifies the coordinate that lost the race, whether it was
// caught by the occupancy pre-check or by the storage unique constraint.
type SeatTakenError struct {
	SessionID int64
	Row       int
	Seat      int
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat (row %d, seat %d) is already taken for session %d", e.Row, e.Seat, e.SessionID)
}

// DuplicateSeatError identifies a coordinate requested twice within one batch.
type DuplicateSeatError struct {
	SessionID int64
	Row       int
	Seat      int
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("seat (row %d, seat %d) requested more than once for session %d", e.Row, e.Seat, e.SessionID)
}

// NotFoundError reports an unknown entity reference.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func NotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
