package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resortdesk/internal/config"
	"resortdesk/internal/database"
	"resortdesk/internal/events"
	"resortdesk/internal/models"
	"resortdesk/internal/repository"
	"resortdesk/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	ts       *httptest.Server
	db       *database.DB
	svc      Services
	sessions *repository.MemorySessionStore
}

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// newTestEnv starts an API over an in-memory database. mutate may adjust
// the API config before the server is built.
func newTestEnv(t *testing.T, mutate func(cfg *config.APIConfig)) *testEnv {
	t.Helper()

	db, err := database.NewDB(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true, Port: 0},
		Auth: config.APIAuthConfig{
			JWTSecret:    testSecret,
			TokenTTL:     time.Hour,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	bus := events.NewEventBus()
	store := repository.NewMemorySessionStore(time.Hour)
	svc := Services{
		Reservations: service.NewReservationService(db, bus, config.ReservationsConfig{}, testLogger()),
		Cart:         service.NewCartService(db, bus, testLogger()),
		Staff:        service.NewStaffService(db, bus, testLogger()),
		Auth:         service.NewAuthService(db, store, cfg.Auth, testLogger()),
		Sessions:     service.NewSessionService(store, testLogger()),
		Ready:        func(ctx context.Context) error { return db.PingContext(ctx) },
	}

	srv := NewHTTPServer(cfg, svc, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, db: db, svc: svc, sessions: store}
}

// do sends a JSON request and returns the response with its body read.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) createEmployee(t *testing.T, name, email, role, password string) *models.Employee {
	t.Helper()
	emp, err := e.svc.Staff.CreateEmployee(context.Background(), models.EmployeeInput{
		Name: name, Email: email, Role: role, Password: password,
	})
	require.NoError(t, err)
	return emp
}

func (e *testEnv) bearer(t *testing.T, emp *models.Employee) map[string]string {
	t.Helper()
	token, err := e.svc.Auth.IssueToken(emp)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func reservationBody(name, date, start string) map[string]any {
	return map[string]any{
		"name":      name,
		"email":     "guest@example.com",
		"phone":     "5551234567",
		"guests":    4,
		"date":      date,
		"startTime": start,
	}
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
