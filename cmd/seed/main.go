package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"planetarium/internal/config"
	"planetarium/internal/database"
	"planetarium/internal/models"
	"planetarium/internal/repository"
)

var (
	adminEmail    = flag.String("admin-email", "admin@planetarium.local", "Email for the admin user")
	adminPassword = flag.String("admin-password", "", "Password for the admin user (required)")
	withSamples   = flag.Bool("samples", false, "Also create sample catalog data")
)

func main() {
	flag.Parse()

	if *adminPassword == "" {
		slog.Error("admin-password is required")
		os.Exit(1)
	}

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	if err := seedAdmin(ctx, repos); err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	if *withSamples {
		if err := seedSamples(ctx, repos); err != nil {
			slog.Error("Failed to seed sample data", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seeding completed")
}

func seedAdmin(ctx context.Context, repos *repository.Repositories) error {
	existing, err := repos.Users.GetByEmail(ctx, *adminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("Admin user already exists", "email", *adminEmail)
		return nil
	}

	hash := sha256.Sum256([]byte(*adminPassword))
	admin := &models.User{
		Email:        *adminEmail,
		PasswordHash: fmt.Sprintf("%x", hash),
		FirstName:    "Admin",
		Surname:      "Admin",
		IsActive:     true,
		IsStaff:      true,
	}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return err
	}

	slog.Info("Created admin user", "email", *adminEmail, "user_id", admin.UserID)
	return nil
}

func seedSamples(ctx context.Context, repos *repository.Repositories) error {
	themes := []string{"Deep Space", "Solar System", "Night Sky"}
	themeIDs := make([]int64, 0, len(themes))
	for _, name := range themes {
		theme := &models.ShowTheme{Name: name}
		if err := repos.Themes.Create(ctx, theme); err != nil {
			return fmt.Errorf("failed to create theme %q: %w", name, err)
		}
		themeIDs = append(themeIDs, theme.ID)
	}

	address := "1 Observatory Hill"
	city := "Almaty"
	country := "Kazakhstan"
	dome := &models.PlanetariumDome{
		Name:              "Main Dome",
		Rows:              12,
		SeatsInRow:        20,
		Address:           &address,
		CityStateProvince: &city,
		Country:           &country,
	}
	if err := repos.Domes.Create(ctx, dome); err != nil {
		return fmt.Errorf("failed to create dome: %w", err)
	}

	show := &models.AstronomyShow{
		Title:       "Journey Through the Milky Way",
		Description: "A guided tour of our galaxy, from the Orion Arm to the central bulge.",
		Duration:    45,
	}
	if err := repos.Shows.Create(ctx, show, themeIDs[:1]); err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}

	session := &models.ShowSession{
		ShowID:   show.ID,
		DomeID:   dome.ID,
		ShowTime: time.Now().Add(48 * time.Hour).Truncate(time.Hour),
	}
	if err := repos.Sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Created sample data",
		"themes", len(themeIDs), "dome_id", dome.ID, "show_id", show.ID, "session_id", session.ID)
	return nil
}
