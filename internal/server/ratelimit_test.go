package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumescore/internal/ai"
	"resumescore/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:5555", nil, "10.0.0.1"},
		{"forwarded for", "10.0.0.1:5555", map[string]string{"X-Forwarded-For": "bogus, 203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"real ip", "10.0.0.1:5555", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"invalid real ip", "10.0.0.1:5555", map[string]string{"X-Real-IP": "nope"}, "10.0.0.1"},
		{"no port", "10.0.0.9", nil, "10.0.0.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1"

	key, by := getRateLimitKey(r, true, true)
	assert.Equal(t, "ip:10.0.0.1", key)
	assert.Equal(t, "ip", by)

	r.Header.Set("Authorization", "Bearer abc")
	key, by = getRateLimitKey(r, true, true)
	assert.Equal(t, "api:abc", key)
	assert.Equal(t, "api_key", by)

	key, _ = getRateLimitKey(r, false, false)
	assert.Empty(t, key)
}

func TestRateLimiterBurstAndCleanup(t *testing.T) {
	rl := NewRateLimiter(60, time.Hour, 2, nil)
	defer rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys have independent buckets")

	assert.Equal(t, 2, rl.GetStats()["active_limiters"])
	rl.cleanup(-time.Second)
	assert.Equal(t, 0, rl.GetStats()["active_limiters"])

	rl.Close()
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	s, _ := newTestServer(t, cfg, ai.Unavailable{})
	h := s.Handler()

	do := func() int {
		r := httptest.NewRequest(http.MethodGet, "/analyses/x", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}
	assert.Equal(t, http.StatusNotFound, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
