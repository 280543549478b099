package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planetarium/internal/database"
	"planetarium/internal/models"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.ShowSession) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO show_sessions (show_id, dome_id, show_time)
		VALUES ($1, $2, $3)
		RETURNING id`,
		session.ShowID, session.DomeID, session.ShowTime,
	).Scan(&session.ID)
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.ShowSession, error) {
	session := &models.ShowSession{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, show_id, dome_id, show_time
		FROM show_sessions
		WHERE id = $1`, id,
	).Scan(&session.ID, &session.ShowID, &session.DomeID, &session.ShowTime)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return session, err
}

// List returns session summaries with the current ticket count per session,
// counted in the same query so availability is consistent with committed
// state at read time. Filters: show id (exact) and calendar date of the
// stored show_time.
func (r *SessionRepository) List(ctx context.Context, showID int64, date string) ([]models.SessionSummary, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT ss.id, ss.show_time, a.title, a.image_url, d.name,
		       d.rows * d.seats_in_row AS capacity,
		       COUNT(t.id) AS ticket_count
		FROM show_sessions ss
		JOIN astronomy_shows a ON a.id = ss.show_id
		JOIN planetarium_domes d ON d.id = ss.dome_id
		LEFT JOIN tickets t ON t.session_id = ss.id
		WHERE 1=1`

	if showID != 0 {
		query += fmt.Sprintf(" AND ss.show_id = $%d", argIndex)
		args = append(args, showID)
		argIndex++
	}

	if date != "" {
		query += fmt.Sprintf(" AND DATE(ss.show_time) = $%d", argIndex)
		args = append(args, date)
		argIndex++
	}

	query += `
		GROUP BY ss.id, ss.show_time, a.title, a.image_url, d.name, d.rows, d.seats_in_row
		ORDER BY ss.show_time DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.SessionSummary
	for rows.Next() {
		var s models.SessionSummary
		err := rows.Scan(
			&s.ID,
			&s.ShowTime,
			&s.ShowTitle,
			&s.ShowImageURL,
			&s.DomeName,
			&s.DomeCapacity,
			&s.TicketCount,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) Update(ctx context.Context, session *models.ShowSession) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE show_sessions
		SET show_id = $1, dome_id = $2, show_time = $3
		WHERE id = $4`,
		session.ShowID, session.DomeID, session.ShowTime, session.ID,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM show_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}
