package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planetarium/internal/middleware"
	"planetarium/internal/models"
	"planetarium/internal/repository"
	"planetarium/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	visitorEmail = "visitor@example.com"
	staffEmail   = "staff@example.com"
	password     = "secret"
)

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) error { return nil }

type testEnv struct {
	router *gin.Engine
	store  *repository.MemoryStore
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := repository.NewMemoryStore()

	hash := sha256.Sum256([]byte(password))
	passwordHash := fmt.Sprintf("%x", hash)

	require.NoError(t, store.Users.Create(ctx, &models.User{
		Email: visitorEmail, PasswordHash: passwordHash, IsActive: true,
	}))
	require.NoError(t, store.Users.Create(ctx, &models.User{
		Email: staffEmail, PasswordHash: passwordHash, IsActive: true, IsStaff: true,
	}))

	services := service.NewServices(service.Stores{
		Themes:       store.Themes,
		Shows:        store.Shows,
		Domes:        store.Domes,
		Sessions:     store.Sessions,
		Reservations: store.Reservations,
	}, nil, noopPublisher{})

	h := NewHandlers(services, store.Users)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.BasicAuth(store.Users, nil))
	{
		staff := middleware.RequireStaff(store.Users)

		themes := api.Group("/themes")
		themes.GET("", h.ListThemes)
		themes.POST("", staff, h.CreateTheme)

		domes := api.Group("/domes")
		domes.GET("", h.ListDomes)
		domes.GET("/:id", h.GetDome)
		domes.POST("", staff, h.CreateDome)

		shows := api.Group("/shows")
		shows.GET("", h.ListShows)
		shows.POST("", staff, h.CreateShow)

		sessions := api.Group("/sessions")
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("", staff, h.CreateSession)

		reservations := api.Group("/reservations")
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.DELETE("/:id", h.CancelReservation)
	}
	router.GET("/health", h.HealthCheck)

	return &testEnv{router: router, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, password)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seedSession creates a 4x6 dome with one show and one session via the
// admin endpoints and returns the session id.
func (e *testEnv) seedSession(t *testing.T) int64 {
	t.Helper()

	w := e.do(t, "POST", "/api/domes", staffEmail, models.CreateDomeRequest{
		Name: "Test Dome", Rows: 4, SeatsInRow: 6,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var dome models.DomeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dome))
	assert.Equal(t, 24, dome.SeatingCapacity)

	w = e.do(t, "POST", "/api/shows", staffEmail, models.CreateShowRequest{
		Title: "Saturn Rising", Duration: 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var show models.AstronomyShow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &show))

	w = e.do(t, "POST", "/api/sessions", staffEmail, models.CreateSessionRequest{
		ShowID: show.ID, DomeID: dome.ID, ShowTime: time.Now().Add(24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var session models.ShowSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	return session.ID
}

func ticketBody(sessionID int64, seats ...[2]int) map[string]interface{} {
	tickets := make([]map[string]interface{}, 0, len(seats))
	for _, s := range seats {
		tickets = append(tickets, map[string]interface{}{
			"session_id": sessionID, "row": s[0], "seat": s[1],
		})
	}
	return map[string]interface{}{"tickets": tickets}
}

func TestHealthNoAuth(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, "GET", "/api/themes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ := http.NewRequest("GET", "/api/themes", nil)
	req.SetBasicAuth(visitorEmail, "wrong-password")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpointsRequireStaff(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, "POST", "/api/domes", visitorEmail, models.CreateDomeRequest{
		Name: "Nope", Rows: 2, SeatsInRow: 2,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(t, "POST", "/api/themes", visitorEmail, models.CreateThemeRequest{Name: "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateDomeValidation(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, "POST", "/api/domes", staffEmail, map[string]interface{}{
		"name": "Flat Dome", "rows": 0, "seats_in_row": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSessionsRejectsMalformedDate(t *testing.T) {
	e := setupEnv(t)
	e.seedSession(t)

	w := e.do(t, "GET", "/api/sessions?date=abc", visitorEmail, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, "GET", "/api/sessions?date=2026-13-01", visitorEmail, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationFlow(t *testing.T) {
	e := setupEnv(t)
	sessionID := e.seedSession(t)

	w := e.do(t, "POST", "/api/reservations", visitorEmail,
		ticketBody(sessionID, [2]int{1, 1}, [2]int{1, 2}))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Tickets, 2)

	// Availability reflects the booking.
	w = e.do(t, "GET", "/api/sessions", visitorEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sessions []models.SessionSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 22, sessions[0].TicketsAvailable)

	// Session detail exposes the taken places.
	w = e.do(t, "GET", fmt.Sprintf("/api/sessions/%d", sessionID), visitorEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.SessionDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, []models.SeatRef{{Row: 1, Seat: 1}, {Row: 1, Seat: 2}}, detail.TakenPlaces)
}

func TestCreateReservationConflict(t *testing.T) {
	e := setupEnv(t)
	sessionID := e.seedSession(t)

	w := e.do(t, "POST", "/api/reservations", visitorEmail, ticketBody(sessionID, [2]int{2, 2}))
	require.Equal(t, http.StatusCreated, w.Code)

	// Batch with one taken seat fails as a whole.
	w = e.do(t, "POST", "/api/reservations", staffEmail,
		ticketBody(sessionID, [2]int{2, 2}, [2]int{3, 3}))
	assert.Equal(t, http.StatusConflict, w.Code)

	// The untouched seat from the failed batch is still free.
	w = e.do(t, "POST", "/api/reservations", staffEmail, ticketBody(sessionID, [2]int{3, 3}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReservationBadRequests(t *testing.T) {
	e := setupEnv(t)
	sessionID := e.seedSession(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty", map[string]interface{}{"tickets": []interface{}{}}},
		{"row out of range", ticketBody(sessionID, [2]int{5, 1})},
		{"seat out of range", ticketBody(sessionID, [2]int{1, 7})},
		{"duplicate in batch", ticketBody(sessionID, [2]int{1, 1}, [2]int{1, 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, "POST", "/api/reservations", visitorEmail, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := e.do(t, "POST", "/api/reservations", visitorEmail, ticketBody(999, [2]int{1, 1}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationOwnership(t *testing.T) {
	e := setupEnv(t)
	sessionID := e.seedSession(t)

	w := e.do(t, "POST", "/api/reservations", visitorEmail, ticketBody(sessionID, [2]int{1, 1}))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	path := fmt.Sprintf("/api/reservations/%d", resp.ID)

	w = e.do(t, "GET", path, visitorEmail, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Staff may inspect any reservation.
	w = e.do(t, "GET", path, staffEmail, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Listing only shows the caller's reservations.
	w = e.do(t, "GET", "/api/reservations", staffEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.ReservationListItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Empty(t, items)
}

func TestCancelReservation(t *testing.T) {
	e := setupEnv(t)
	sessionID := e.seedSession(t)

	w := e.do(t, "POST", "/api/reservations", visitorEmail, ticketBody(sessionID, [2]int{4, 6}))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	path := fmt.Sprintf("/api/reservations/%d", resp.ID)

	// Staff may cancel anyone's reservation.
	w = e.do(t, "DELETE", path, staffEmail, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Gone now.
	w = e.do(t, "GET", path, visitorEmail, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// And the seat is bookable again.
	w = e.do(t, "POST", "/api/reservations", staffEmail, ticketBody(sessionID, [2]int{4, 6}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCatalogFilters(t *testing.T) {
	e := setupEnv(t)

	w := e.do(t, "POST", "/api/themes", staffEmail, models.CreateThemeRequest{Name: "Deep Space"})
	require.Equal(t, http.StatusCreated, w.Code)
	var theme models.ShowTheme
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &theme))

	w = e.do(t, "POST", "/api/shows", staffEmail, models.CreateShowRequest{
		Title: "Galaxies Collide", Duration: 40, ThemeIDs: []int64{theme.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "POST", "/api/shows", staffEmail, models.CreateShowRequest{
		Title: "Lunar Eclipse", Duration: 35,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, "GET", "/api/shows?title=galax", visitorEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shows []models.AstronomyShow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shows))
	require.Len(t, shows, 1)
	assert.Equal(t, "Galaxies Collide", shows[0].Title)

	w = e.do(t, "GET", "/api/shows?theme=deep", visitorEmail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	shows = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shows))
	require.Len(t, shows, 1)
	assert.Equal(t, "Galaxies Collide", shows[0].Title)
}
