package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planetarium/internal/errs"
	"planetarium/internal/models"
)

type DomeService struct {
	domeStore DomeStore
}

func NewDomeService(domeStore DomeStore) *DomeService {
	return &DomeService{domeStore: domeStore}
}

func (s *DomeService) Create(ctx context.Context, req *models.CreateDomeRequest) (*models.DomeResponse, error) {
	dome := &models.PlanetariumDome{
		Name:              req.Name,
		Address:           req.Address,
		CityStateProvince: req.CityStateProvince,
		Country:           req.Country,
		Phone:             req.Phone,
		Website:           req.Website,
		Rows:              req.Rows,
		SeatsInRow:        req.SeatsInRow,
	}

	if err := s.domeStore.Create(ctx, dome); err != nil {
		return nil, fmt.Errorf("failed to create dome: %w", err)
	}

	return domeResponse(dome), nil
}

func (s *DomeService) Get(ctx context.Context, id int64) (*models.DomeResponse, error) {
	dome, err := s.domeStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dome: %w", err)
	}
	if dome == nil {
		return nil, errs.NotFound("dome", id)
	}

	return domeResponse(dome), nil
}

func (s *DomeService) List(ctx context.Context, country string) ([]models.DomeResponse, error) {
	domes, err := s.domeStore.List(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("failed to list domes: %w", err)
	}

	result := make([]models.DomeResponse, len(domes))
	for i := range domes {
		result[i] = *domeResponse(&domes[i])
	}

	return result, nil
}

func (s *DomeService) Update(ctx context.Context, id int64, req *models.CreateDomeRequest) (*models.DomeResponse, error) {
	dome := &models.PlanetariumDome{
		ID:                id,
		Name:              req.Name,
		Address:           req.Address,
		CityStateProvince: req.CityStateProvince,
		Country:           req.Country,
		Phone:             req.Phone,
		Website:           req.Website,
		Rows:              req.Rows,
		SeatsInRow:        req.SeatsInRow,
	}

	// Grid edits are allowed even with sessions scheduled; existing tickets
	// keep their coordinates and are not re-validated against the new grid.
	if err := s.domeStore.Update(ctx, dome); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("dome", id)
		}
		return nil, fmt.Errorf("failed to update dome: %w", err)
	}

	return domeResponse(dome), nil
}

func (s *DomeService) Delete(ctx context.Context, id int64) error {
	if err := s.domeStore.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("dome", id)
		}
		return fmt.Errorf("failed to delete dome: %w", err)
	}
	return nil
}

func domeResponse(dome *models.PlanetariumDome) *models.DomeResponse {
	return &models.DomeResponse{
		PlanetariumDome: *dome,
		SeatingCapacity: dome.Capacity(),
	}
}
