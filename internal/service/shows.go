package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planetarium/internal/errs"
	"planetarium/internal/logger"
	"planetarium/internal/models"
)

type ThemeService struct {
	themeStore ThemeStore
}

func NewThemeService(themeStore ThemeStore) *ThemeService {
	return &ThemeService{themeStore: themeStore}
}

func (s *ThemeService) Create(ctx context.Context, req *models.CreateThemeRequest) (*models.ShowTheme, error) {
	theme := &models.ShowTheme{Name: req.Name}
	if err := s.themeStore.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("failed to create theme: %w", err)
	}
	return theme, nil
}

func (s *ThemeService) Get(ctx context.Context, id int64) (*models.ShowTheme, error) {
	theme, err := s.themeStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	if theme == nil {
		return nil, errs.NotFound("theme", id)
	}
	return theme, nil
}

func (s *ThemeService) List(ctx context.Context) ([]models.ShowTheme, error) {
	themes, err := s.themeStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

func (s *ThemeService) Update(ctx context.Context, id int64, req *models.CreateThemeRequest) (*models.ShowTheme, error) {
	theme := &models.ShowTheme{ID: id, Name: req.Name}
	if err := s.themeStore.Update(ctx, theme); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("theme", id)
		}
		return nil, fmt.Errorf("failed to update theme: %w", err)
	}
	return theme, nil
}

func (s *ThemeService) Delete(ctx context.Context, id int64) error {
	if err := s.themeStore.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("theme", id)
		}
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return nil
}

type ShowService struct {
	showStore  ShowStore
	themeStore ThemeStore
	search     ShowSearch
}

func NewShowService(showStore ShowStore, themeStore ThemeStore, search ShowSearch) *ShowService {
	return &ShowService{
		showStore:  showStore,
		themeStore: themeStore,
		search:     search,
	}
}

func (s *ShowService) Create(ctx context.Context, req *models.CreateShowRequest) (*models.AstronomyShow, error) {
	if err := s.checkThemes(ctx, req.ThemeIDs); err != nil {
		return nil, err
	}

	show := &models.AstronomyShow{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		ImageURL:    req.ImageURL,
	}

	if err := s.showStore.Create(ctx, show, req.ThemeIDs); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	created, err := s.showStore.GetByID(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload show: %w", err)
	}

	s.indexShow(ctx, created)

	return created, nil
}

func (s *ShowService) Get(ctx context.Context, id int64) (*models.AstronomyShow, error) {
	show, err := s.showStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, errs.NotFound("show", id)
	}
	return show, nil
}

// List filters shows by title and theme. With Elasticsearch configured the
// terms go through the index and hits are hydrated from storage; otherwise
// storage does the filtering itself.
func (s *ShowService) List(ctx context.Context, title, theme string) ([]models.AstronomyShow, error) {
	if s.search != nil && (title != "" || theme != "") {
		ids, err := s.search.SearchShows(ctx, title, theme)
		if err != nil {
			logger.WithContext(ctx).Error("Show search failed, falling back to storage",
				"error", err)
		} else {
			return s.showStore.GetByIDs(ctx, ids)
		}
	}

	shows, err := s.showStore.List(ctx, title, theme)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return shows, nil
}

func (s *ShowService) Update(ctx context.Context, id int64, req *models.CreateShowRequest) (*models.AstronomyShow, error) {
	if err := s.checkThemes(ctx, req.ThemeIDs); err != nil {
		return nil, err
	}

	show := &models.AstronomyShow{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		ImageURL:    req.ImageURL,
	}

	if err := s.showStore.Update(ctx, show, req.ThemeIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("show", id)
		}
		return nil, fmt.Errorf("failed to update show: %w", err)
	}

	updated, err := s.showStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload show: %w", err)
	}

	s.indexShow(ctx, updated)

	return updated, nil
}

func (s *ShowService) Delete(ctx context.Context, id int64) error {
	if err := s.showStore.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("show", id)
		}
		return fmt.Errorf("failed to delete show: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteShow(ctx, id); err != nil {
			logger.WithContext(ctx).Error("Failed to remove show from search index",
				"error", err, "show_id", id)
		}
	}

	return nil
}

func (s *ShowService) checkThemes(ctx context.Context, themeIDs []int64) error {
	for _, themeID := range themeIDs {
		theme, err := s.themeStore.GetByID(ctx, themeID)
		if err != nil {
			return fmt.Errorf("failed to check theme: %w", err)
		}
		if theme == nil {
			return errs.NotFound("theme", themeID)
		}
	}
	return nil
}

func (s *ShowService) indexShow(ctx context.Context, show *models.AstronomyShow) {
	if s.search == nil || show == nil {
		return
	}
	if err := s.search.IndexShow(ctx, show); err != nil {
		logger.WithContext(ctx).Error("Failed to index show",
			"error", err, "show_id", show.ID)
	}
}
