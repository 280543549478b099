package service

import (
	"context"
	"testing"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A second show with a session two days later.
	other := &models.AstronomyShow{Title: "Aurora Night", Duration: 30}
	require.NoError(t, f.store.Shows.Create(ctx, other, nil))

	session, err := f.store.Sessions.GetByID(ctx, f.sessionID)
	require.NoError(t, err)

	later := &models.ShowSession{
		ShowID:   other.ID,
		DomeID:   session.DomeID,
		ShowTime: session.ShowTime.Add(48 * time.Hour),
	}
	require.NoError(t, f.store.Sessions.Create(ctx, later))

	all, err := f.services.Sessions.List(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byShow, err := f.services.Sessions.List(ctx, other.ID, "")
	require.NoError(t, err)
	require.Len(t, byShow, 1)
	assert.Equal(t, later.ID, byShow[0].ID)
	assert.Equal(t, "Aurora Night", byShow[0].ShowTitle)

	byDate, err := f.services.Sessions.List(ctx, 0, session.ShowTime.Format("2006-01-02"))
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, f.sessionID, byDate[0].ID)
}

func TestSessionListRejectsMalformedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, date := range []string{"abc", "2026-13-01", "01-09-2026", "2026/09/01"} {
		_, err := f.services.Sessions.List(ctx, 0, date)
		assert.ErrorIs(t, err, errs.ErrInvalidDate, "date %q", date)
	}
}

func TestSessionListAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sessions, err := f.services.Sessions.List(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 25, sessions[0].DomeCapacity)
	assert.Equal(t, 25, sessions[0].TicketsAvailable)

	_, err = f.services.Reservations.Create(ctx, f.userID, reserve(f.sessionID,
		models.SeatRef{Row: 1, Seat: 1},
		models.SeatRef{Row: 1, Seat: 2},
		models.SeatRef{Row: 1, Seat: 3}))
	require.NoError(t, err)

	sessions, err = f.services.Sessions.List(ctx, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 22, sessions[0].TicketsAvailable)
}

func TestSessionDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.userID, reserve(f.sessionID,
		models.SeatRef{Row: 2, Seat: 3},
		models.SeatRef{Row: 1, Seat: 1}))
	require.NoError(t, err)

	detail, err := f.services.Sessions.Detail(ctx, f.sessionID)
	require.NoError(t, err)

	assert.Equal(t, "Mars at Opposition", detail.Show.Title)
	assert.Equal(t, 5, detail.Dome.Rows)
	assert.Equal(t, 25, detail.Dome.SeatingCapacity)
	// Taken places come back ordered by row, then seat.
	assert.Equal(t, []models.SeatRef{{Row: 1, Seat: 1}, {Row: 2, Seat: 3}}, detail.TakenPlaces)
}

func TestSessionDetailNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Sessions.Detail(context.Background(), 404)
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "session", notFound.Kind)
}

func TestSessionCreateChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.store.Sessions.GetByID(ctx, f.sessionID)
	require.NoError(t, err)

	_, err = f.services.Sessions.Create(ctx, &models.CreateSessionRequest{
		ShowID:   999,
		DomeID:   session.DomeID,
		ShowTime: time.Now().Add(time.Hour),
	})
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "show", notFound.Kind)

	_, err = f.services.Sessions.Create(ctx, &models.CreateSessionRequest{
		ShowID:   session.ShowID,
		DomeID:   999,
		ShowTime: time.Now().Add(time.Hour),
	})
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "dome", notFound.Kind)

	created, err := f.services.Sessions.Create(ctx, &models.CreateSessionRequest{
		ShowID:   session.ShowID,
		DomeID:   session.DomeID,
		ShowTime: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 1, f.publisher.published(models.EventSessionCreated))
}

func TestSessionDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}))
	require.NoError(t, err)

	require.NoError(t, f.services.Sessions.Delete(ctx, f.sessionID))

	sessions, err := f.services.Sessions.List(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
