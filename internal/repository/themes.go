package repository

import (
	"context"
	"database/sql"

	"planetarium/internal/database"
	"planetarium/internal/models"
)

type ThemeRepository struct {
	db *database.DB
}

func NewThemeRepository(db *database.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

func (r *ThemeRepository) Create(ctx context.Context, theme *models.ShowTheme) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO show_themes (name) VALUES ($1) RETURNING id`,
		theme.Name,
	).Scan(&theme.ID)
}

func (r *ThemeRepository) GetByID(ctx context.Context, id int64) (*models.ShowTheme, error) {
	theme := &models.ShowTheme{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM show_themes WHERE id = $1`, id,
	).Scan(&theme.ID, &theme.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return theme, err
}

func (r *ThemeRepository) List(ctx context.Context) ([]models.ShowTheme, error) {
	var themes []models.ShowTheme

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM show_themes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var theme models.ShowTheme
		if err := rows.Scan(&theme.ID, &theme.Name); err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}

	return themes, rows.Err()
}

func (r *ThemeRepository) Update(ctx context.Context, theme *models.ShowTheme) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE show_themes SET name = $1 WHERE id = $2`,
		theme.Name, theme.ID,
	)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *ThemeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM show_themes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}
