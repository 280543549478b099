package repository

import (
	"context"
	"database/sql"

	"planetarium/internal/database"
	"planetarium/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, first_name, surname, is_active, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, registered_at`,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.Surname,
		user.IsActive,
		user.IsStaff,
	).Scan(&user.UserID, &user.RegisteredAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash, first_name, surname, is_active, is_staff, registered_at
		FROM users
		WHERE user_id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash, first_name, surname, is_active, is_staff, registered_at
		FROM users
		WHERE email = $1`, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.Surname,
		&user.IsActive,
		&user.IsStaff,
		&user.RegisteredAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}
