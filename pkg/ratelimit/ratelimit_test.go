package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinLimit(t *testing.T) {
	rl := NewLoginRateLimiter(3, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "4. deneme reddedilmeli")

	// Başka bir IP etkilenmez
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestAllow_WindowExpiry(t *testing.T) {
	rl := NewLoginRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"), "pencere doldu, yeni pencere açılmalı")
}

func TestReset(t *testing.T) {
	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	rl.Reset("1.2.3.4")
	assert.True(t, rl.Allow("1.2.3.4"), "reset sonrası sayaç sıfırlanmalı")
}

func TestRetryAfterSeconds(t *testing.T) {
	rl := NewLoginRateLimiter(1, time.Minute)
	defer rl.Close()

	assert.Equal(t, 0, rl.RetryAfterSeconds("bilinmeyen"))

	rl.Allow("1.2.3.4")
	retry := rl.RetryAfterSeconds("1.2.3.4")
	assert.Greater(t, retry, 0)
	assert.LessOrEqual(t, retry, 61)
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded chain takes first hop", "203.0.113.7, 10.0.0.1, 10.0.0.2", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded with spaces", "  203.0.113.7 , 10.0.0.1", "", "10.0.0.1:1234", "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.9", "10.0.0.1:1234", "198.51.100.9"},
		{"remote addr fallback", "", "", "192.0.2.5:4567", "192.0.2.5"},
		{"remote addr without port", "", "", "192.0.2.5", "192.0.2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ExtractIP(req))
		})
	}
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "45 second(s)", FormatRetryMessage(45))
	assert.Equal(t, "1 minute(s)", FormatRetryMessage(60))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(120))
}
