package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_Allow(t *testing.T) {
	tb := NewTokenBucket(3, 0.0)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	// Bucket is empty and nothing refills at rate 0
	assert.False(t, tb.Allow())

	tb.Reset()
	assert.True(t, tb.Allow())
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(2, 0.0, 0)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// A different key has its own bucket
	assert.True(t, rl.Allow("10.0.0.2"))

	rl.Reset("10.0.0.1")
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestPerIPMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, 0.0, 0)
	handler := PerIPMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	require.Equal(t, http.StatusOK, do("10.0.0.1:2222"))
	// Same IP, different port: same bucket
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:3333"))
	// Other clients are unaffected
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1111"))
}
