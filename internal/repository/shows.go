package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planetarium/internal/database"
	"planetarium/internal/models"
)

type ShowRepository struct {
	db *database.DB
}

func NewShowRepository(db *database.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

// Create inserts the show and its theme links in one transaction.
func (r *ShowRepository) Create(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO astronomy_shows (title, description, duration, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		show.Title, show.Description, show.Duration, show.ImageURL,
	).Scan(&show.ID)
	if err != nil {
		return err
	}

	for _, themeID := range themeIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO astronomy_show_themes (show_id, theme_id) VALUES ($1, $2)`,
			show.ID, themeID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ShowRepository) GetByID(ctx context.Context, id int64) (*models.AstronomyShow, error) {
	show := &models.AstronomyShow{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, duration, image_url
		FROM astronomy_shows
		WHERE id = $1`, id,
	).Scan(&show.ID, &show.Title, &show.Description, &show.Duration, &show.ImageURL)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	themes, err := r.themesForShow(ctx, id)
	if err != nil {
		return nil, err
	}
	show.Themes = themes

	return show, nil
}

// List returns shows filtered by title substring and theme name substring,
// both case-insensitive. Used as the fallback when Elasticsearch is not
// configured.
func (r *ShowRepository) List(ctx context.Context, title, theme string) ([]models.AstronomyShow, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT DISTINCT s.id, s.title, s.description, s.duration, s.image_url
		FROM astronomy_shows s`

	if theme != "" {
		query += `
		JOIN astronomy_show_themes st ON st.show_id = s.id
		JOIN show_themes t ON t.id = st.theme_id`
	}

	query += " WHERE 1=1"

	if title != "" {
		query += fmt.Sprintf(" AND s.title ILIKE $%d", argIndex)
		args = append(args, "%"+title+"%")
		argIndex++
	}

	if theme != "" {
		query += fmt.Sprintf(" AND t.name ILIKE $%d", argIndex)
		args = append(args, "%"+theme+"%")
		argIndex++
	}

	query += " ORDER BY s.title"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shows []models.AstronomyShow
	for rows.Next() {
		var show models.AstronomyShow
		err := rows.Scan(&show.ID, &show.Title, &show.Description, &show.Duration, &show.ImageURL)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range shows {
		themes, err := r.themesForShow(ctx, shows[i].ID)
		if err != nil {
			return nil, err
		}
		shows[i].Themes = themes
	}

	return shows, nil
}

// GetByIDs returns the given shows preserving the input order. Used to
// hydrate Elasticsearch hits.
func (r *ShowRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.AstronomyShow, error) {
	shows := make([]models.AstronomyShow, 0, len(ids))
	for _, id := range ids {
		show, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if show != nil {
			shows = append(shows, *show)
		}
	}
	return shows, nil
}

func (r *ShowRepository) Update(ctx context.Context, show *models.AstronomyShow, themeIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE astronomy_shows
		SET title = $1, description = $2, duration = $3, image_url = $4
		WHERE id = $5`,
		show.Title, show.Description, show.Duration, show.ImageURL, show.ID,
	)
	if err != nil {
		return err
	}
	if err := requireRowsAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM astronomy_show_themes WHERE show_id = $1`, show.ID); err != nil {
		return err
	}

	for _, themeID := range themeIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO astronomy_show_themes (show_id, theme_id) VALUES ($1, $2)`,
			show.ID, themeID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ShowRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM astronomy_shows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *ShowRepository) themesForShow(ctx context.Context, showID int64) ([]models.ShowTheme, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM show_themes t
		JOIN astronomy_show_themes st ON st.theme_id = t.id
		WHERE st.show_id = $1
		ORDER BY t.id`, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []models.ShowTheme
	for rows.Next() {
		var theme models.ShowTheme
		if err := rows.Scan(&theme.ID, &theme.Name); err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}

	return themes, rows.Err()
}
