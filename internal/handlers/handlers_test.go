package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline-rpg/engine/internal/dispatch"
	"github.com/questline-rpg/engine/internal/store"
	"github.com/questline-rpg/engine/pkg/content"
	"github.com/questline-rpg/engine/pkg/engine"
	"github.com/questline-rpg/engine/pkg/session"
)

func testTables() *content.Tables {
	return &content.Tables{
		Classes: map[string]content.Class{
			"warrior": {
				ID:        "warrior",
				Name:      "Warrior",
				BaseStats: map[string]int{content.StatHealth: 100, content.StatAttack: 10, content.StatDefense: 5},
			},
		},
		Locations: map[string]content.Location{
			"village_square": {ID: "village_square", Name: "Village Square", IsCity: true},
			"player_camp":    {ID: "player_camp", Name: "Camp"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStack(t *testing.T) (*dispatch.Dispatcher, store.Store) {
	t.Helper()
	logger := testLogger()
	eng := engine.New(testTables(), logger)
	st := store.NewMemoryStore()
	d := dispatch.New(eng, st, logger)
	t.Cleanup(d.Close)
	return d, st
}

func postEvent(t *testing.T, h http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/event", bytes.NewReader(data))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEventHandlerFirstContact(t *testing.T) {
	d, st := newTestStack(t)
	h := NewEventHandler(d, testLogger())

	w := postEvent(t, h, EventRequest{UserID: "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp EventResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Narrations)
	assert.NotEmpty(t, resp.Narrations[0].Actions, "class selection offers choices")

	_, err := st.Load(context.Background(), "user-1")
	assert.NoError(t, err, "session persisted")
}

func TestEventHandlerRequiresUserID(t *testing.T) {
	d, _ := newTestStack(t)
	h := NewEventHandler(d, testLogger())

	w := postEvent(t, h, EventRequest{Action: "battle.attack"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "user_id is required", resp.Error)
}

func TestEventHandlerRejectsBadBody(t *testing.T) {
	d, _ := newTestStack(t)
	h := NewEventHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/event", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerMethodNotAllowed(t *testing.T) {
	d, _ := newTestStack(t)
	h := NewEventHandler(d, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/event", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSessionHandlerGet(t *testing.T) {
	d, st := newTestStack(t)
	h := NewSessionHandler(st, d, testLogger())

	sess := session.New("user-1", time.Now())
	require.NoError(t, st.Save(context.Background(), sess))

	req := httptest.NewRequest(http.MethodGet, "/v1/session/user-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var loaded session.Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&loaded))
	assert.Equal(t, "user-1", loaded.UserID())
	assert.Equal(t, session.ModeClassSelection, loaded.Mode)
}

func TestSessionHandlerGetMissing(t *testing.T) {
	d, st := newTestStack(t)
	h := NewSessionHandler(st, d, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/session/nobody", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandlerRequiresUserID(t *testing.T) {
	d, st := newTestStack(t)
	h := NewSessionHandler(st, d, testLogger())

	for _, path := range []string{"/v1/session", "/v1/session/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %q", path)
	}
}

func TestSessionHandlerDelete(t *testing.T) {
	d, st := newTestStack(t)
	h := NewSessionHandler(st, d, testLogger())
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, session.New("user-1", time.Now())))

	req := httptest.NewRequest(http.MethodDelete, "/v1/session/user-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err := st.Load(ctx, "user-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionHandlerMethodNotAllowed(t *testing.T) {
	d, st := newTestStack(t)
	h := NewSessionHandler(st, d, testLogger())

	req := httptest.NewRequest(http.MethodPut, "/v1/session/user-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthHandlerHealthy(t *testing.T) {
	h := NewHealthHandler(store.NewMemoryStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "questline-engine", resp.Service)
	assert.Equal(t, "healthy", resp.Components["store"])
}

// failingStore reports an unreachable backend.
type failingStore struct{ store.Store }

func (failingStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthHandlerDegraded(t *testing.T) {
	h := NewHealthHandler(failingStore{store.NewMemoryStore()}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["store"])
}
