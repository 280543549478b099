package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createThemesTable,
		createShowsTable,
		createShowThemesTable,
		createDomesTable,
		createSessionsTable,
		createReservationsTable,
		createTicketsTable,
		createSessionsDateIndex,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    is_staff BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createThemesTable = `
CREATE TABLE IF NOT EXISTS show_themes (
    id SERIAL PRIMARY KEY,
    name VARCHAR(63) NOT NULL
);`

const createShowsTable = `
CREATE TABLE IF NOT EXISTS astronomy_shows (
    id SERIAL PRIMARY KEY,
    title VARCHAR(63) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    duration INTEGER NOT NULL,
    image_url VARCHAR(500)
);`

const createShowThemesTable = `
CREATE TABLE IF NOT EXISTS astronomy_show_themes (
    show_id INTEGER NOT NULL REFERENCES astronomy_shows(id) ON DELETE CASCADE,
    theme_id INTEGER NOT NULL REFERENCES show_themes(id) ON DELETE CASCADE,
    PRIMARY KEY (show_id, theme_id)
);`

const createDomesTable = `
CREATE TABLE IF NOT EXISTS planetarium_domes (
    id SERIAL PRIMARY KEY,
    name VARCHAR(63) NOT NULL,
    address VARCHAR(255),
    city_state_province VARCHAR(100),
    country VARCHAR(100),
    phone VARCHAR(30),
    website VARCHAR(255),
    rows INTEGER NOT NULL CHECK (rows > 0),
    seats_in_row INTEGER NOT NULL CHECK (seats_in_row > 0)
);`

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS show_sessions (
    id SERIAL PRIMARY KEY,
    show_id INTEGER NOT NULL REFERENCES astronomy_shows(id) ON DELETE CASCADE,
    dome_id INTEGER NOT NULL REFERENCES planetarium_domes(id) ON DELETE CASCADE,
    show_time TIMESTAMP NOT NULL
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// The UNIQUE(session_id, row_number, seat_number) constraint is the
// authoritative arbiter for concurrent reservation attempts; everything
// upstream of it is a fast-path check.
const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id SERIAL PRIMARY KEY,
    reservation_id INTEGER NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    session_id INTEGER NOT NULL REFERENCES show_sessions(id) ON DELETE CASCADE,
    row_number INTEGER NOT NULL CHECK (row_number > 0),
    seat_number INTEGER NOT NULL CHECK (seat_number > 0),

    UNIQUE (session_id, row_number, seat_number)
);`

const createSessionsDateIndex = `
CREATE INDEX IF NOT EXISTS show_sessions_show_time_date_idx
ON show_sessions (DATE(show_time));`
