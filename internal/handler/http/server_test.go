package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LinkGuard-Backend/internal/config"
	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository/memory"
	"LinkGuard-Backend/internal/service"
	"LinkGuard-Backend/pkg/random"
)

type stubParser struct{}

func (stubParser) Identify(string) domain.BrowserPlatform {
	return domain.BrowserPlatform{Browser: "Chrome", Platform: "Windows"}
}

type serverFixture struct {
	handler         http.Handler
	storage         *memory.MemStorage
	validationQueue *queue.Queue[events.URLValidationEvent]
	geoQueue        *queue.Queue[events.GeoLocationEvent]
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	log := zap.NewNop()
	storage := memory.New()
	validationQueue := queue.New[events.URLValidationEvent]("validation", 64, log)
	geoQueue := queue.New[events.GeoLocationEvent]("geolocation", 64, log)

	shortener := service.NewShortener(storage, validationQueue, geoQueue,
		&config.URLShortener{RedirectionMode: 307}, log)
	limiter := service.NewRedirectionLimiter(storage,
		&config.RateLimiter{Limit: 10, TimeFrame: 60 * time.Second})
	redirection := service.NewRedirection(storage, limiter, geoQueue, stubParser{}, log)

	queues := map[string]QueueInfo{
		"validation":  validationQueue,
		"geolocation": geoQueue,
	}

	server, err := NewServer(storage, shortener, redirection, queues, log,
		"http://localhost:8080", "100-M")
	require.NoError(t, err)

	return &serverFixture{
		handler:         server.SetupRoutes(),
		storage:         storage,
		validationQueue: validationQueue,
		geoQueue:        geoQueue,
	}
}

func (f *serverFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) seedShortURL(t *testing.T, hash string, state domain.ValidationState) {
	t.Helper()
	require.NoError(t, f.storage.SaveShortURL(context.Background(), &domain.ShortURL{
		Hash:            hash,
		Target:          "http://example.com/",
		RedirectionMode: 307,
		ValidationState: state,
	}))
}

func TestShortenEndpoint(t *testing.T) {
	t.Run("creates_short_url", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/api/shorten", `{"url":"http://example.com/page"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateShortURLResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Regexp(t, random.HashPattern, resp.Hash)
		assert.Equal(t, "http://localhost:8080/"+resp.Hash, resp.ShortURL)
		assert.Equal(t, "http://example.com/page", resp.Target)

		// Creation kicks off async validation and creator geolocation
		assert.Equal(t, 1, f.validationQueue.Len())
		assert.Equal(t, 1, f.geoQueue.Len())
	})

	t.Run("rejects_invalid_target", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/api/shorten", `{"url":"not a url"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects_missing_url", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/api/shorten", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects_malformed_json", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodPost, "/api/shorten", `{"url":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects_wrong_method", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/api/shorten", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRedirectEndpoint(t *testing.T) {
	t.Run("admitted", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "aaaa1111", domain.ValidationState{Reachable: true, Safe: true, Validated: true})

		rec := f.do(t, http.MethodGet, "/aaaa1111", "")

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "http://example.com/", rec.Header().Get("Location"))
	})

	t.Run("invalid_hash_format", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/not-a-hash", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown_hash", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/ffffffff", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("pending_validation", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "bbbb2222", domain.ValidationState{Validated: false})

		rec := f.do(t, http.MethodGet, "/bbbb2222", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("unsafe_target", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "cccc3333", domain.ValidationState{Reachable: true, Safe: false, Validated: true})

		rec := f.do(t, http.MethodGet, "/cccc3333", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unreachable_target", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "dddd4444", domain.ValidationState{Reachable: false, Safe: true, Validated: true})

		rec := f.do(t, http.MethodGet, "/dddd4444", "")
		assert.Equal(t, http.StatusGone, rec.Code)
	})

	t.Run("throttled_after_limit", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "eeee5555", domain.ValidationState{Reachable: true, Safe: true, Validated: true})

		for i := 0; i < 10; i++ {
			rec := f.do(t, http.MethodGet, "/eeee5555", "")
			require.Equal(t, http.StatusTemporaryRedirect, rec.Code, "redirect %d", i+1)
		}

		rec := f.do(t, http.MethodGet, "/eeee5555", "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("system_paths_are_not_hashes", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/api/unknown", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStatsEndpoint(t *testing.T) {
	t.Run("returns_aggregates", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedShortURL(t, "aaaa1111", domain.ValidationState{Reachable: true, Safe: true, Validated: true})

		// Two redirects produce two clicks
		require.Equal(t, http.StatusTemporaryRedirect, f.do(t, http.MethodGet, "/aaaa1111", "").Code)
		require.Equal(t, http.StatusTemporaryRedirect, f.do(t, http.MethodGet, "/aaaa1111", "").Code)

		rec := f.do(t, http.MethodGet, "/api/stats/aaaa1111", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp GetStatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "aaaa1111", resp.Hash)
		assert.Equal(t, int64(2), resp.Total)
		assert.Equal(t, int64(2), resp.ByBrowser["Chrome"])
		assert.Equal(t, int64(2), resp.ByPlatform["Windows"])
		assert.True(t, resp.Validation.Validated)
	})

	t.Run("invalid_hash", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/api/stats/nope", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown_hash", func(t *testing.T) {
		f := newServerFixture(t)

		rec := f.do(t, http.MethodGet, "/api/stats/ffffffff", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture(t)

	t.Run("health", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.DatabaseStatus)
	})

	t.Run("ready", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics_reports_queues", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Queues map[string]struct {
				Length   int `json:"length"`
				Capacity int `json:"capacity"`
			} `json:"queues"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Contains(t, resp.Queues, "validation")
		assert.Equal(t, 64, resp.Queues["validation"].Capacity)
	})
}

func TestExtractIPAddress(t *testing.T) {
	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/aaaa1111", nil)
		req.RemoteAddr = "192.0.2.1:54321"
		return req
	}

	t.Run("forwarded_for_wins", func(t *testing.T) {
		req := newReq()
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("X-Real-IP", "198.51.100.2")

		assert.Equal(t, "203.0.113.7", extractIPAddress(req))
	})

	t.Run("real_ip_fallback", func(t *testing.T) {
		req := newReq()
		req.Header.Set("X-Real-IP", "198.51.100.2")

		assert.Equal(t, "198.51.100.2", extractIPAddress(req))
	})

	t.Run("remote_addr_fallback", func(t *testing.T) {
		assert.Equal(t, "192.0.2.1", extractIPAddress(newReq()))
	})
}
