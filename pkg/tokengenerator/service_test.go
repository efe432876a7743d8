package tokengenerator

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(options ...TokenServiceOption) *TokenService {
	gen := NewJwtTokenGenerator("test-secret", "device-trust-demo", "device-trust-demo")
	return NewTokenService(gen, options...)
}

// requestWithCookies copies all Set-Cookie headers from a recorded response
// onto a fresh request, the way a browser would.
func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func TestTokenService_SessionRoundTrip(t *testing.T) {
	ts := newTestService()

	rec := httptest.NewRecorder()
	require.NoError(t, ts.IssueSessionCookie(rec, SessionClaims{UserID: "user-1", DeviceID: "device-1"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SESSION_COOKIE_NAME, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionExpiry), cookies[0].Expires, time.Minute)

	claims, ok := ts.ReadSessionClaims(requestWithCookies(t, rec))
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "device-1", claims.DeviceID)
}

func TestTokenService_PendingDeviceRoundTrip(t *testing.T) {
	ts := newTestService()
	visitorData := `{"visitorId":"abc123"}`

	rec := httptest.NewRecorder()
	require.NoError(t, ts.IssuePendingDeviceCookie(rec, PendingDeviceClaims{UserID: "user-1", VisitorData: visitorData}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, PENDING_DEVICE_COOKIE_NAME, cookies[0].Name)
	// Session cookie: no Expires attribute
	assert.True(t, cookies[0].Expires.IsZero())

	claims, ok := ts.ReadPendingDeviceClaims(requestWithCookies(t, rec))
	require.True(t, ok)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, visitorData, claims.VisitorData)
}

func TestTokenService_ReadClaims_NeverErrors(t *testing.T) {
	ts := newTestService()

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := ts.ReadSessionClaims(req)
		assert.False(t, ok)
		_, ok = ts.ReadPendingDeviceClaims(req)
		assert.False(t, ok)
	})

	t.Run("garbage cookie value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SESSION_COOKIE_NAME, Value: "not-a-jwt"})
		_, ok := ts.ReadSessionClaims(req)
		assert.False(t, ok)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewTokenService(NewJwtTokenGenerator("other-secret", "x", "x"))
		rec := httptest.NewRecorder()
		require.NoError(t, other.IssueSessionCookie(rec, SessionClaims{UserID: "user-1", DeviceID: "device-1"}))

		_, ok := ts.ReadSessionClaims(requestWithCookies(t, rec))
		assert.False(t, ok)
	})

	t.Run("expired session token", func(t *testing.T) {
		short := newTestService(WithSessionExpiry(-time.Minute))
		rec := httptest.NewRecorder()
		require.NoError(t, short.IssueSessionCookie(rec, SessionClaims{UserID: "user-1", DeviceID: "device-1"}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
		_, ok := short.ReadSessionClaims(req)
		assert.False(t, ok)
	})
}

func TestTokenService_ClearCookies(t *testing.T) {
	ts := newTestService()

	rec := httptest.NewRecorder()
	require.NoError(t, ts.ClearSessionCookie(rec))
	require.NoError(t, ts.ClearPendingDeviceCookie(rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
}

func TestJwtTokenGenerator_RejectsNoneAlg(t *testing.T) {
	gen := NewJwtTokenGenerator("test-secret", "iss", "aud")

	// Header {"alg":"none","typ":"JWT"} with an empty signature
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1c2VyX2lkIjoidXNlci0xIn0."
	_, err := gen.ParseToken(unsigned)
	assert.Error(t, err)
}
