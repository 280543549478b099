package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"planetarium/internal/errs"
	"planetarium/internal/models"
	"planetarium/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPublisher records published events instead of talking to a broker.
type stubPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *stubPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *stubPublisher) published(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, s := range p.subjects {
		if s == subject {
			count++
		}
	}
	return count
}

type fixture struct {
	services  *Services
	store     *repository.MemoryStore
	publisher *stubPublisher
	userID    int64
	staffID   int64
	sessionID int64
}

// newFixture seeds a 5x5 dome with one show, one session and two users.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	publisher := &stubPublisher{}
	services := NewServices(Stores{
		Themes:       store.Themes,
		Shows:        store.Shows,
		Domes:        store.Domes,
		Sessions:     store.Sessions,
		Reservations: store.Reservations,
	}, nil, publisher)

	user := &models.User{Email: "visitor@example.com", IsActive: true}
	require.NoError(t, store.Users.Create(ctx, user))
	staff := &models.User{Email: "staff@example.com", IsActive: true, IsStaff: true}
	require.NoError(t, store.Users.Create(ctx, staff))

	dome := &models.PlanetariumDome{Name: "Small Dome", Rows: 5, SeatsInRow: 5}
	require.NoError(t, store.Domes.Create(ctx, dome))

	show := &models.AstronomyShow{Title: "Mars at Opposition", Duration: 40}
	require.NoError(t, store.Shows.Create(ctx, show, nil))

	session := &models.ShowSession{ShowID: show.ID, DomeID: dome.ID, ShowTime: time.Now().Add(24 * time.Hour)}
	require.NoError(t, store.Sessions.Create(ctx, session))

	return &fixture{
		services:  services,
		store:     store,
		publisher: publisher,
		userID:    user.UserID,
		staffID:   staff.UserID,
		sessionID: session.ID,
	}
}

func (f *fixture) availability(t *testing.T) int {
	t.Helper()
	sessions, err := f.services.Sessions.List(context.Background(), 0, "")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	return sessions[0].TicketsAvailable
}

func reserve(sessionID int64, seats ...models.SeatRef) *models.CreateReservationRequest {
	req := &models.CreateReservationRequest{}
	for _, s := range seats {
		req.Tickets = append(req.Tickets, models.TicketRequest{SessionID: sessionID, Row: s.Row, Seat: s.Seat})
	}
	return req
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, 25, f.availability(t))

	resp, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}, models.SeatRef{Row: 1, Seat: 2}))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Len(t, resp.Tickets, 2)
	for _, ticket := range resp.Tickets {
		assert.NotZero(t, ticket.ID)
		assert.Equal(t, resp.ID, ticket.ReservationID)
	}

	assert.Equal(t, 23, f.availability(t))
	assert.Equal(t, 1, f.publisher.published(models.EventReservationCreated))
}

func TestCreateReservationConflictBooksNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}, models.SeatRef{Row: 1, Seat: 2}))
	require.NoError(t, err)

	// Seat (1,2) is taken, so the whole batch fails and (2,2) stays free.
	_, err = f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 2}, models.SeatRef{Row: 2, Seat: 2}))

	var taken *errs.SeatTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, f.sessionID, taken.SessionID)
	assert.Equal(t, 1, taken.Row)
	assert.Equal(t, 2, taken.Seat)

	assert.Equal(t, 23, f.availability(t))

	// The free seat from the failed batch can still be booked.
	_, err = f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 2, Seat: 2}))
	require.NoError(t, err)
	assert.Equal(t, 22, f.availability(t))
}

func TestCreateReservationDuplicateSeatInBatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Reservations.Create(context.Background(), f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 3, Seat: 3}, models.SeatRef{Row: 3, Seat: 3}))

	var dup *errs.DuplicateSeatError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 25, f.availability(t))
}

func TestCreateReservationEmpty(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Reservations.Create(context.Background(), f.userID,
		&models.CreateReservationRequest{})
	assert.ErrorIs(t, err, errs.ErrEmptyReservation)
}

func TestCreateReservationOutOfRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		seat  models.SeatRef
		field string
	}{
		{"row zero", models.SeatRef{Row: 0, Seat: 1}, "row"},
		{"row above grid", models.SeatRef{Row: 6, Seat: 1}, "row"},
		{"seat zero", models.SeatRef{Row: 1, Seat: 0}, "seat"},
		{"seat above grid", models.SeatRef{Row: 1, Seat: 6}, "seat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Reservations.Create(ctx, f.userID, reserve(f.sessionID, tt.seat))
			var rangeErr *errs.SeatRangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
		})
	}

	assert.Equal(t, 25, f.availability(t))
}

func TestCreateReservationMixedValidInvalidBooksNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Reservations.Create(context.Background(), f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 2, Seat: 2}, models.SeatRef{Row: 6, Seat: 1}))

	var rangeErr *errs.SeatRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 25, f.availability(t))
}

func TestCreateReservationUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Reservations.Create(context.Background(), f.userID,
		reserve(999, models.SeatRef{Row: 1, Seat: 1}))

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "session", notFound.Kind)
}

func TestCreateReservationRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Everyone fights for the same seat. Exactly one request wins.
	const contenders = 20
	var wg sync.WaitGroup
	errsCh := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.services.Reservations.Create(ctx, f.userID,
				reserve(f.sessionID, models.SeatRef{Row: 4, Seat: 4}))
			errsCh <- err
		}()
	}
	wg.Wait()
	close(errsCh)

	winners, losers := 0, 0
	for err := range errsCh {
		if err == nil {
			winners++
			continue
		}
		var taken *errs.SeatTakenError
		require.ErrorAs(t, err, &taken)
		losers++
	}

	assert.Equal(t, 1, winners)
	assert.Equal(t, contenders-1, losers)
	assert.Equal(t, 24, f.availability(t))
}

func TestGetReservationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}))
	require.NoError(t, err)

	// Owner sees it.
	got, err := f.services.Reservations.Get(ctx, f.userID, false, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)

	// A different non-staff user does not.
	_, err = f.services.Reservations.Get(ctx, f.staffID, false, resp.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	// Staff does.
	_, err = f.services.Reservations.Get(ctx, f.staffID, true, resp.ID)
	assert.NoError(t, err)
}

func TestCancelReservationFreesSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 5, Seat: 5}))
	require.NoError(t, err)
	assert.Equal(t, 24, f.availability(t))

	require.NoError(t, f.services.Reservations.Cancel(ctx, f.userID, false, resp.ID))
	assert.Equal(t, 25, f.availability(t))
	assert.Equal(t, 1, f.publisher.published(models.EventReservationCancelled))

	// The freed seat can be booked again.
	_, err = f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 5, Seat: 5}))
	require.NoError(t, err)
}

func TestCancelReservationOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}))
	require.NoError(t, err)

	err = f.services.Reservations.Cancel(ctx, f.staffID, false, resp.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	// Staff may cancel anyone's reservation.
	require.NoError(t, f.services.Reservations.Cancel(ctx, f.staffID, true, resp.ID))
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 1}))
	require.NoError(t, err)
	second, err := f.services.Reservations.Create(ctx, f.userID,
		reserve(f.sessionID, models.SeatRef{Row: 1, Seat: 2}))
	require.NoError(t, err)

	// Someone else's booking must not show up.
	_, err = f.services.Reservations.Create(ctx, f.staffID,
		reserve(f.sessionID, models.SeatRef{Row: 2, Seat: 1}))
	require.NoError(t, err)

	items, err := f.services.Reservations.List(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []int64{items[0].ID, items[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	for _, item := range items {
		assert.Equal(t, "visitor@example.com", item.Owner)
		require.Len(t, item.Tickets, 1)
		assert.Equal(t, "Mars at Opposition", item.Tickets[0].ShowTitle)
	}
}
