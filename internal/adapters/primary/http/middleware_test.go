package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("test response"))
	})

	wrapped := loggingMiddleware(handler, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "test response", w.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		recoveryMiddleware(handler, slog.Default()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panic recovery", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			recoveryMiddleware(handler, slog.Default()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "media-src 'self' blob:")
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	limiter.lastCleanup = now

	assert.True(t, limiter.isAllowed("10.0.0.1", now))
	assert.True(t, limiter.isAllowed("10.0.0.1", now.Add(time.Second)))
	assert.False(t, limiter.isAllowed("10.0.0.1", now.Add(2*time.Second)))

	// Other clients have their own budget
	assert.True(t, limiter.isAllowed("10.0.0.2", now.Add(2*time.Second)))

	// The window slides
	assert.True(t, limiter.isAllowed("10.0.0.1", now.Add(61*time.Second)))

	t.Run("idle clients are forgotten", func(t *testing.T) {
		limiter.isAllowed("10.0.0.3", now.Add(10*time.Minute))
		assert.NotContains(t, limiter.clients, "10.0.0.2")
		assert.Contains(t, limiter.clients, "10.0.0.3")
	})

	t.Run("middleware answers 429", func(t *testing.T) {
		handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), newRateLimiter(1, time.Minute))

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, "60", second.Header().Get("Retry-After"))
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr", nil, "192.168.1.20:51234", "192.168.1.20"},
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "127.0.0.1:1", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "127.0.0.1:1", "198.51.100.2"},
		{"garbage header", map[string]string{"X-Forwarded-For": "nope"}, "127.0.0.1:1", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	n, err := rw.Write([]byte("missing"))

	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, http.StatusNotFound, rw.status)
	assert.Equal(t, 7, rw.size)
	assert.Equal(t, w, rw.Unwrap())
}
