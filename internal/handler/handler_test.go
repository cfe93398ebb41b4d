package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/config"
	"github.com/elegant-dining/reservation-api/internal/handler"
	"github.com/elegant-dining/reservation-api/internal/queue"
	"github.com/elegant-dining/reservation-api/internal/repository"
	"github.com/elegant-dining/reservation-api/internal/router"
	"github.com/elegant-dining/reservation-api/internal/testutil"
)

const testAdminSecret = "test-admin-secret"

// app wires the full HTTP surface over an in-memory database, with
// no rate limiter, no response cache and a broker publish that only
// records events.
type app struct {
	e            *echo.Echo
	users        *repository.UserRepo
	reservations *repository.ReservationRepo
	sessions     *auth.Manager

	mu        sync.Mutex
	published []queue.ReservationCreatedEvent
}

// publishedEvents snapshots the events recorded so far. Publishing
// happens on a goroutine after the response is written, so callers
// poll through require.Eventually rather than reading once.
func (a *app) publishedEvents() []queue.ReservationCreatedEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]queue.ReservationCreatedEvent, len(a.published))
	copy(out, a.published)
	return out
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := testutil.OpenDB(t)

	cfg := config.Config{
		Env:         "test",
		AdminSecret: testAdminSecret,
		BcryptCost:  bcrypt.MinCost,
	}
	a := &app{
		e:            echo.New(),
		users:        repository.NewUserRepo(db),
		reservations: repository.NewReservationRepo(db),
		sessions:     auth.NewManager(repository.NewSessionRepo(db), time.Hour),
	}

	rh := handler.NewReservationHandler(a.reservations)
	rh.Publish = func(_ context.Context, ev queue.ReservationCreatedEvent) error {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.published = append(a.published, ev)
		return nil
	}

	router.RegisterRoutes(a.e)
	router.RegisterAuth(a.e, handler.NewAuthHandler(cfg, a.users, a.sessions), a.sessions, nil)
	router.RegisterReservations(a.e, rh, a.sessions, nil)
	router.RegisterUpload(a.e, handler.NewUploadHandler(t.TempDir()))
	return a
}

// request performs one JSON request against the app and decodes the
// response body into a generic map.
func (a *app) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// requestList is request for endpoints returning a JSON array.
func (a *app) requestList(t *testing.T, method, path, token string) (int, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out []map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '[' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

// register creates a user through the API and returns its session
// token.
func (a *app) register(t *testing.T, username string, admin bool) string {
	t.Helper()
	body := map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret123",
		"full_name": "Test " + username,
	}
	if admin {
		body["role"] = "admin"
		body["admin_secret"] = testAdminSecret
	}
	code, resp := a.request(t, http.MethodPost, "/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, code, "register %s: %v", username, resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}
