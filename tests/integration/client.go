package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"planetarium/internal/models"
)

// TestClient drives the API of a running instance over HTTP.
type TestClient struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

func NewTestClient(baseURL, email, password string) *TestClient {
	return &TestClient{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Email, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decode[T any](t *testing.T, resp *http.Response, wantStatus int) T {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d: %s", wantStatus, resp.StatusCode, raw)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func (c *TestClient) CreateDome(t *testing.T, req models.CreateDomeRequest) models.DomeResponse {
	resp := c.makeRequest(t, "POST", "/api/domes", req)
	return decode[models.DomeResponse](t, resp, http.StatusCreated)
}

func (c *TestClient) CreateShow(t *testing.T, req models.CreateShowRequest) models.AstronomyShow {
	resp := c.makeRequest(t, "POST", "/api/shows", req)
	return decode[models.AstronomyShow](t, resp, http.StatusCreated)
}

func (c *TestClient) CreateSession(t *testing.T, req models.CreateSessionRequest) models.ShowSession {
	resp := c.makeRequest(t, "POST", "/api/sessions", req)
	return decode[models.ShowSession](t, resp, http.StatusCreated)
}

func (c *TestClient) ListSessions(t *testing.T) []models.SessionSummary {
	resp := c.makeRequest(t, "GET", "/api/sessions", nil)
	return decode[[]models.SessionSummary](t, resp, http.StatusOK)
}

func (c *TestClient) GetSession(t *testing.T, id int64) models.SessionDetail {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/sessions/%d", id), nil)
	return decode[models.SessionDetail](t, resp, http.StatusOK)
}

// Reserve attempts a booking and returns the raw response status with the
// decoded body left to the caller.
func (c *TestClient) Reserve(t *testing.T, req models.CreateReservationRequest) *http.Response {
	return c.makeRequest(t, "POST", "/api/reservations", req)
}

func (c *TestClient) ReserveOK(t *testing.T, req models.CreateReservationRequest) models.CreateReservationResponse {
	resp := c.Reserve(t, req)
	return decode[models.CreateReservationResponse](t, resp, http.StatusCreated)
}

func (c *TestClient) CancelReservation(t *testing.T, id int64) {
	resp := c.makeRequest(t, "DELETE", fmt.Sprintf("/api/reservations/%d", id), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", resp.StatusCode)
	}
}
