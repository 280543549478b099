package models

import (
	"planetarium/internal/errs"
)

// SeatRef is a bare (row, seat) coordinate within a session's grid.
type SeatRef struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// ValidateSeat checks a coordinate against a dome grid. It is pure and must
// run for every ticket before anything is written; the returned error names
// the violated bound and the valid range.
func ValidateSeat(row, seat int, dome *PlanetariumDome) error {
	if row < 1 || row > dome.Rows {
		return &errs.SeatRangeError{Field: "row", Value: row, Max: dome.Rows}
	}
	if seat < 1 || seat > dome.SeatsInRow {
		return &errs.SeatRangeError{Field: "seat", Value: seat, Max: dome.SeatsInRow}
	}
	return nil
}
