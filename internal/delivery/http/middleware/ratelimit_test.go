package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trust      bool
		xff        string
		remoteAddr string
		want       string
	}{
		{"forwarded header ignored by default", false, "1.2.3.4", "10.0.0.1:1234", "10.0.0.1"},
		{"RemoteAddr without port", false, "", "192.168.1.1", "192.168.1.1"},
		{"trusted proxy single hop", true, "1.2.3.4", "10.0.0.1:1234", "1.2.3.4"},
		{"trusted proxy uses the entry it appended", true, "6.6.6.6, 1.2.3.4", "10.0.0.1:1234", "1.2.3.4"},
		{"trusted proxy without header", true, "", "192.168.1.1:5678", "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(tt.trust)(r))
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		ok, _ := rl.Allow("1.2.3.4")
		require.True(t, ok, "attempt %d", i+1)
	}
	ok, wait := rl.Allow("1.2.3.4")
	require.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other keys are independent")

	now = now.Add(12 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "one token refilled")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	now = now.Add(10 * time.Minute)
	rl.Allow("b")

	rl.Cleanup(5 * time.Minute)
	assert.Len(t, rl.entries, 1)
	assert.Contains(t, rl.entries, "b")
}

func TestRateLimit_middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimit(rl, RemoteIP)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
	rr := httptest.NewRecorder()
	handler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "too_many_requests")
}
