package repository

import (
	"context"
	"database/sql"
	"errors"

	"planetarium/internal/database"
	"planetarium/internal/errs"
	"planetarium/internal/models"

	"github.com/lib/pq"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateWithTickets commits a reservation and all of its tickets in a single
// transaction. Tickets are inserted one at a time so a unique-constraint
// violation can be attributed to the exact coordinate that lost the race;
// any failure rolls the whole reservation back. The database-level
// UNIQUE(session_id, row_number, seat_number) is the authoritative
// correctness mechanism here, not the service's pre-check.
func (r *ReservationRepository) CreateWithTickets(ctx context.Context, reservation *models.Reservation, tickets []models.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reservations (user_id)
		VALUES ($1)
		RETURNING id, created_at`,
		reservation.UserID,
	).Scan(&reservation.ID, &reservation.CreatedAt)
	if err != nil {
		return err
	}

	for i := range tickets {
		tickets[i].ReservationID = reservation.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tickets (reservation_id, session_id, row_number, seat_number)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			tickets[i].ReservationID, tickets[i].SessionID, tickets[i].Row, tickets[i].Seat,
		).Scan(&tickets[i].ID)
		if err != nil {
			if isUniqueViolation(err) {
				return &errs.SeatTakenError{
					SessionID: tickets[i].SessionID,
					Row:       tickets[i].Row,
					Seat:      tickets[i].Seat,
				}
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	reservation.Tickets = tickets
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// TakenSeats returns the occupied coordinates of a session ordered by row
// then seat, for rendering seat maps and for the ledger's fast-path check.
func (r *ReservationRepository) TakenSeats(ctx context.Context, sessionID int64) ([]models.SeatRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT row_number, seat_number
		FROM tickets
		WHERE session_id = $1
		ORDER BY row_number, seat_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.SeatRef
	for rows.Next() {
		var seat models.SeatRef
		if err := rows.Scan(&seat.Row, &seat.Seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *ReservationRepository) CountTickets(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE session_id = $1`, sessionID,
	).Scan(&count)
	return count, err
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	reservation := &models.Reservation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at
		FROM reservations
		WHERE id = $1`, id,
	).Scan(&reservation.ID, &reservation.UserID, &reservation.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tickets, err := r.ticketsForReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	reservation.Tickets = tickets

	return reservation, nil
}

// ListByUser returns the caller's reservations newest first, each with its
// tickets joined against show and dome for display.
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]models.ReservationListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, u.email
		FROM reservations r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ReservationListItem
	for rows.Next() {
		var item models.ReservationListItem
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Owner); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		tickets, err := r.ticketDetails(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Tickets = tickets
	}

	return items, nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	// Tickets go with it via ON DELETE CASCADE, freeing the seats.
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *ReservationRepository) ticketsForReservation(ctx context.Context, reservationID int64) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reservation_id, session_id, row_number, seat_number
		FROM tickets
		WHERE reservation_id = $1
		ORDER BY row_number, seat_number`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err := rows.Scan(&t.ID, &t.ReservationID, &t.SessionID, &t.Row, &t.Seat); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}

func (r *ReservationRepository) ticketDetails(ctx context.Context, reservationID int64) ([]models.TicketDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, ss.show_time, a.title, d.name, t.row_number, t.seat_number
		FROM tickets t
		JOIN show_sessions ss ON ss.id = t.session_id
		JOIN astronomy_shows a ON a.id = ss.show_id
		JOIN planetarium_domes d ON d.id = ss.dome_id
		WHERE t.reservation_id = $1
		ORDER BY t.row_number, t.seat_number`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.TicketDetail
	for rows.Next() {
		var t models.TicketDetail
		err := rows.Scan(&t.ID, &t.ShowTime, &t.ShowTitle, &t.DomeName, &t.Row, &t.Seat)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}
