package repository

import (
	"context"
	"testing"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) (*MemoryStore, int64, int64) {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()

	user := &models.User{Email: "u@example.com", IsActive: true}
	require.NoError(t, s.Users.Create(ctx, user))

	dome := &models.PlanetariumDome{Name: "Dome", Rows: 3, SeatsInRow: 3}
	require.NoError(t, s.Domes.Create(ctx, dome))

	show := &models.AstronomyShow{Title: "Comets", Duration: 30}
	require.NoError(t, s.Shows.Create(ctx, show, nil))

	session := &models.ShowSession{ShowID: show.ID, DomeID: dome.ID, ShowTime: time.Now().Add(time.Hour)}
	require.NoError(t, s.Sessions.Create(ctx, session))

	return s, user.UserID, session.ID
}

func TestMemoryCreateWithTicketsUniqueness(t *testing.T) {
	s, userID, sessionID := seedStore(t)
	ctx := context.Background()

	first := &models.Reservation{UserID: userID}
	err := s.Reservations.CreateWithTickets(ctx, first, []models.Ticket{
		{SessionID: sessionID, Row: 1, Seat: 1},
		{SessionID: sessionID, Row: 1, Seat: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Tickets, 2)
	assert.Equal(t, first.ID, first.Tickets[0].ReservationID)

	// Second insert hits the occupied seat and writes nothing.
	second := &models.Reservation{UserID: userID}
	err = s.Reservations.CreateWithTickets(ctx, second, []models.Ticket{
		{SessionID: sessionID, Row: 2, Seat: 1},
		{SessionID: sessionID, Row: 1, Seat: 2},
	})
	var taken *errs.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, 1, taken.Row)
	assert.Equal(t, 2, taken.Seat)

	count, err := s.Reservations.CountTickets(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	seats, err := s.Reservations.TakenSeats(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, []models.SeatRef{{Row: 1, Seat: 1}, {Row: 1, Seat: 2}}, seats)
}

func TestMemoryCreateWithTicketsRejectsDuplicateInBatch(t *testing.T) {
	s, userID, sessionID := seedStore(t)
	ctx := context.Background()

	// The same coordinate twice in one batch must fail like sequential
	// inserts against the unique constraint would, writing nothing.
	reservation := &models.Reservation{UserID: userID}
	err := s.Reservations.CreateWithTickets(ctx, reservation, []models.Ticket{
		{SessionID: sessionID, Row: 2, Seat: 2},
		{SessionID: sessionID, Row: 2, Seat: 2},
	})
	var taken *errs.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, 2, taken.Row)
	assert.Equal(t, 2, taken.Seat)

	count, err := s.Reservations.CountTickets(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryDeleteReservationFreesSeats(t *testing.T) {
	s, userID, sessionID := seedStore(t)
	ctx := context.Background()

	reservation := &models.Reservation{UserID: userID}
	require.NoError(t, s.Reservations.CreateWithTickets(ctx, reservation, []models.Ticket{
		{SessionID: sessionID, Row: 3, Seat: 3},
	}))

	require.NoError(t, s.Reservations.Delete(ctx, reservation.ID))

	count, err := s.Reservations.CountTickets(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Same coordinate is insertable again.
	again := &models.Reservation{UserID: userID}
	require.NoError(t, s.Reservations.CreateWithTickets(ctx, again, []models.Ticket{
		{SessionID: sessionID, Row: 3, Seat: 3},
	}))
}

func TestMemorySessionDeleteCascadesTickets(t *testing.T) {
	s, userID, sessionID := seedStore(t)
	ctx := context.Background()

	reservation := &models.Reservation{UserID: userID}
	require.NoError(t, s.Reservations.CreateWithTickets(ctx, reservation, []models.Ticket{
		{SessionID: sessionID, Row: 1, Seat: 1},
	}))

	require.NoError(t, s.Sessions.Delete(ctx, sessionID))

	count, err := s.Reservations.CountTickets(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryListByUser(t *testing.T) {
	s, userID, sessionID := seedStore(t)
	ctx := context.Background()

	other := &models.User{Email: "other@example.com", IsActive: true}
	require.NoError(t, s.Users.Create(ctx, other))

	mine := &models.Reservation{UserID: userID}
	require.NoError(t, s.Reservations.CreateWithTickets(ctx, mine, []models.Ticket{
		{SessionID: sessionID, Row: 1, Seat: 1},
	}))
	theirs := &models.Reservation{UserID: other.UserID}
	require.NoError(t, s.Reservations.CreateWithTickets(ctx, theirs, []models.Ticket{
		{SessionID: sessionID, Row: 2, Seat: 2},
	}))

	items, err := s.Reservations.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
	assert.Equal(t, "u@example.com", items[0].Owner)
	require.Len(t, items[0].Tickets, 1)
	assert.Equal(t, "Comets", items[0].Tickets[0].ShowTitle)
	assert.Equal(t, "Dome", items[0].Tickets[0].DomeName)
}

func TestMemoryThemeDeleteUnlinksShows(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	theme := &models.ShowTheme{Name: "Nebulae"}
	require.NoError(t, s.Themes.Create(ctx, theme))

	show := &models.AstronomyShow{Title: "Pillars of Creation", Duration: 25}
	require.NoError(t, s.Shows.Create(ctx, show, []int64{theme.ID}))

	require.NoError(t, s.Themes.Delete(ctx, theme.ID))

	got, err := s.Shows.GetByID(ctx, show.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Themes)
}
