package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/open-tracker/internal/domain"
	"github.com/ignite/open-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore simulates a broken backing store.
type failingStore struct{}

func (failingStore) RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error) {
	return domain.TrackingEvent{}, errors.New("backing store unavailable")
}

func newTestRouter(s OpenRecorder) http.Handler {
	r := chi.NewRouter()
	NewHandler(s, nil).Register(r)
	return r
}

func TestHandleTrackGIF(t *testing.T) {
	st := store.NewMemoryStore()
	router := newTestRouter(st)

	req := httptest.NewRequest(http.MethodGet, "/track/abc123", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("GIF89a")))

	evt, err := st.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, evt.Opened)
	assert.Equal(t, "203.0.113.5:54321", evt.IPAddress)
	assert.Equal(t, "Mozilla/5.0", evt.UserAgent)
}

func TestHandleTrackPNG(t *testing.T) {
	st := store.NewMemoryStore()
	router := newTestRouter(st)

	req := httptest.NewRequest(http.MethodGet, "/pixel/png-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	evt, err := st.Get(context.Background(), "png-1")
	require.NoError(t, err)
	assert.True(t, evt.Opened)
}

func TestHandleAnalytics(t *testing.T) {
	st := store.NewMemoryStore()
	router := newTestRouter(st)

	req := httptest.NewRequest(http.MethodGet, "/analytics/an-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, "Analytics data recorded successfully", body["message"])

	evt, err := st.Get(context.Background(), "an-1")
	require.NoError(t, err)
	assert.True(t, evt.Opened)
}

func TestBeaconNeverFails(t *testing.T) {
	router := newTestRouter(failingStore{})

	for _, path := range []string{"/track/x", "/pixel/x", "/analytics/x"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
		assert.NotEmpty(t, rec.Body.Bytes(), "path %s", path)
	}
}

func TestRealIPPrefersForwardedFor(t *testing.T) {
	st := store.NewMemoryStore()
	router := newTestRouter(st)

	req := httptest.NewRequest(http.MethodGet, "/track/fwd-1", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	evt, err := st.Get(context.Background(), "fwd-1")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", evt.IPAddress)
}
