package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsnaaur/OpenLine/internal/config"
	"github.com/itsnaaur/OpenLine/internal/storage"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	cfg := config.Config{
		Env:           "dev",
		Origin:        "http://localhost:3000",
		SessionSecret: "router-test-secret",
		PublicBaseURL: "http://localhost:8080",
	}
	// nil pool is fine here: these tests only exercise routes that are
	// rejected before any repository call.
	return New(zerolog.Nop(), nil, store, cfg)
}

// The access-code lookup surface carries its own fixed-window limit of 10
// requests per minute per client IP.
func TestLookupRateLimit(t *testing.T) {
	r := testRouter(t)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/code/bogus", nil)
		req.RemoteAddr = "203.0.113.7:4444"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < lookupRateLimit; i++ {
		rec := do()
		require.Equal(t, http.StatusNotFound, rec.Code, "request %d should pass the limiter", i+1)
	}

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "11th request in the window must be rejected")
}

func TestLookupRateLimitIsPerClient(t *testing.T) {
	r := testRouter(t)

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/code/bogus", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < lookupRateLimit; i++ {
		do("203.0.113.8:1111")
	}
	require.Equal(t, http.StatusTooManyRequests, do("203.0.113.8:1111").Code)

	// a different client is unaffected
	assert.Equal(t, http.StatusNotFound, do("198.51.100.2:2222").Code)
}

// A client that exhausted the limit is admitted again once the window
// has passed. httprate folds the previous window into the current one
// at a sliding weight, so the counter is only fully clean after two
// quiet windows; the production limiter differs from this one only in
// window length.
func TestLookupRateLimitResetsAfterWindow(t *testing.T) {
	const window = 500 * time.Millisecond
	r := chi.NewRouter()
	r.Use(lookupLimiter(window))
	r.Get("/api/reports/code/{code}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/code/bogus", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < lookupRateLimit; i++ {
		require.Equal(t, http.StatusNotFound, do(), "request %d should pass the limiter", i+1)
	}
	require.Equal(t, http.StatusTooManyRequests, do())

	time.Sleep(2*window + 100*time.Millisecond)
	assert.Equal(t, http.StatusNotFound, do(), "first request of the next window must succeed")
}

func TestAdminRoutesAreGated(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
