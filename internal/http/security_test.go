package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted peer ignores headers", "203.0.113.7:5000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy forwards", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy real ip", "127.0.0.1:5000", "", "198.51.100.9", "198.51.100.9"},
		{"garbage forwarded", "127.0.0.1:5000", "not-an-ip", "", "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}

func TestIsSuspicious(t *testing.T) {
	assert.False(t, isSuspicious(httptest.NewRequest(http.MethodGet, "/api/report?shape=items", nil)))
	assert.True(t, isSuspicious(httptest.NewRequest(http.MethodGet, "/.env", nil)))
	assert.True(t, isSuspicious(httptest.NewRequest(http.MethodGet, "/api/report?shape=x'union select", nil)))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", "sqlmap/1.7")
	assert.True(t, isSuspicious(r))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.stop()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))
	assert.EqualValues(t, 1, rl.hits.Load())

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("a"))

	now = now.Add(rateLimitStaleAfter + time.Minute)
	rl.cleanupStaleEntries()
	rl.mu.Lock()
	assert.Empty(t, rl.clients)
	rl.mu.Unlock()
}

func TestParseReportRequestKey(t *testing.T) {
	a, err := parseReportRequest(map[string][]string{"shape": {"month"}, "start": {"2020-01-01"}})
	assert.NoError(t, err)
	b, err := parseReportRequest(map[string][]string{"shape": {"month"}, "end": {"2020-01-01"}})
	assert.NoError(t, err)
	assert.NotEqual(t, a.key(), b.key())

	c, err := parseReportRequest(nil)
	assert.NoError(t, err)
	assert.Equal(t, "items|||", c.key())
}
