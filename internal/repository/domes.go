package repository

import (
	"context"
	"database/sql"
	"fmt"

	"planetarium/internal/database"
	"planetarium/internal/models"
)

type DomeRepository struct {
	db *database.DB
}

func NewDomeRepository(db *database.DB) *DomeRepository {
	return &DomeRepository{db: db}
}

func (r *DomeRepository) Create(ctx context.Context, dome *models.PlanetariumDome) error {
	query := `
		INSERT INTO planetarium_domes (name, address, city_state_province, country, phone, website, rows, seats_in_row)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		dome.Name,
		dome.Address,
		dome.CityStateProvince,
		dome.Country,
		dome.Phone,
		dome.Website,
		dome.Rows,
		dome.SeatsInRow,
	).Scan(&dome.ID)
}

func (r *DomeRepository) GetByID(ctx context.Context, id int64) (*models.PlanetariumDome, error) {
	dome := &models.PlanetariumDome{}
	query := `
		SELECT id, name, address, city_state_province, country, phone, website, rows, seats_in_row
		FROM planetarium_domes
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dome.ID,
		&dome.Name,
		&dome.Address,
		&dome.CityStateProvince,
		&dome.Country,
		&dome.Phone,
		&dome.Website,
		&dome.Rows,
		&dome.SeatsInRow,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return dome, err
}

// List returns domes, optionally filtered by a case-insensitive country match.
func (r *DomeRepository) List(ctx context.Context, country string) ([]models.PlanetariumDome, error) {
	var domes []models.PlanetariumDome
	var args []interface{}

	query := `
		SELECT id, name, address, city_state_province, country, phone, website, rows, seats_in_row
		FROM planetarium_domes`

	if country != "" {
		query += fmt.Sprintf(" WHERE country ILIKE $%d", 1)
		args = append(args, "%"+country+"%")
	}

	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var dome models.PlanetariumDome
		err := rows.Scan(
			&dome.ID,
			&dome.Name,
			&dome.Address,
			&dome.CityStateProvince,
			&dome.Country,
			&dome.Phone,
			&dome.Website,
			&dome.Rows,
			&dome.SeatsInRow,
		)
		if err != nil {
			return nil, err
		}
		domes = append(domes, dome)
	}

	return domes, rows.Err()
}

func (r *DomeRepository) Update(ctx context.Context, dome *models.PlanetariumDome) error {
	query := `
		UPDATE planetarium_domes
		SET name = $1, address = $2, city_state_province = $3, country = $4,
		    phone = $5, website = $6, rows = $7, seats_in_row = $8
		WHERE id = $9`

	res, err := r.db.ExecContext(ctx, query,
		dome.Name,
		dome.Address,
		dome.CityStateProvince,
		dome.Country,
		dome.Phone,
		dome.Website,
		dome.Rows,
		dome.SeatsInRow,
		dome.ID,
	)
	if err != nil {
		return err
	}

	return requireRowsAffected(res)
}

func (r *DomeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planetarium_domes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

// requireRowsAffected turns a zero-row write into sql.ErrNoRows so services
// can map it to a not-found error.
func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
