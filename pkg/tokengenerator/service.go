package tokengenerator

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie name constants
const (
	SESSION_COOKIE_NAME        = "user-session"
	PENDING_DEVICE_COOKIE_NAME = "visitor-data"
)

// DefaultSessionExpiry is how long a full session stays valid
const DefaultSessionExpiry = 1 * time.Hour

// SessionClaims identifies a fully authenticated user and the trusted device
// the session was established on
type SessionClaims struct {
	UserID   string
	DeviceID string
}

// PendingDeviceClaims identifies a user who has passed the credential check
// but not yet confirmed the current device. VisitorData carries the raw
// fingerprint payload from the login form.
type PendingDeviceClaims struct {
	UserID      string
	VisitorData string
}

// TokenService issues and reads the signed cookies the login flow runs on
type TokenService struct {
	tokenGenerator TokenGenerator
	cookieSetter   CookieSetter
	sessionExpiry  time.Duration
}

// TokenServiceOption is a function that configures a TokenService
type TokenServiceOption func(*TokenService)

// WithCookieSetter sets the cookie setter
func WithCookieSetter(cookieSetter CookieSetter) TokenServiceOption {
	return func(ts *TokenService) {
		ts.cookieSetter = cookieSetter
	}
}

// WithSessionExpiry sets the session token expiry duration
func WithSessionExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.sessionExpiry = expiry
	}
}

// NewTokenService creates a new TokenService
func NewTokenService(tokenGenerator TokenGenerator, options ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		tokenGenerator: tokenGenerator,
		cookieSetter:   NewCookieSetter(true, false),
		sessionExpiry:  DefaultSessionExpiry,
	}

	for _, option := range options {
		option(ts)
	}

	return ts
}

// IssueSessionCookie writes the session cookie for an authenticated user
func (ts *TokenService) IssueSessionCookie(w http.ResponseWriter, claims SessionClaims) error {
	token, expiresAt, err := ts.tokenGenerator.GenerateToken(claims.UserID, ts.sessionExpiry, map[string]interface{}{
		"user_id":   claims.UserID,
		"device_id": claims.DeviceID,
	})
	if err != nil {
		return fmt.Errorf("failed to generate session token: %w", err)
	}
	return ts.cookieSetter.SetCookie(w, SESSION_COOKIE_NAME, token, expiresAt)
}

// IssuePendingDeviceCookie writes the pending device cookie. It is a browser
// session cookie without an expiry claim; it dies with the browser session.
func (ts *TokenService) IssuePendingDeviceCookie(w http.ResponseWriter, claims PendingDeviceClaims) error {
	token, _, err := ts.tokenGenerator.GenerateToken(claims.UserID, 0, map[string]interface{}{
		"user_id":      claims.UserID,
		"visitor_data": claims.VisitorData,
	})
	if err != nil {
		return fmt.Errorf("failed to generate pending device token: %w", err)
	}
	return ts.cookieSetter.SetCookie(w, PENDING_DEVICE_COOKIE_NAME, token, time.Time{})
}

// ClearSessionCookie removes the session cookie
func (ts *TokenService) ClearSessionCookie(w http.ResponseWriter) error {
	return ts.cookieSetter.ClearCookie(w, SESSION_COOKIE_NAME)
}

// ClearPendingDeviceCookie removes the pending device cookie
func (ts *TokenService) ClearPendingDeviceCookie(w http.ResponseWriter) error {
	return ts.cookieSetter.ClearCookie(w, PENDING_DEVICE_COOKIE_NAME)
}

// ReadSessionClaims reads the session cookie from the request. A missing,
// expired or tampered cookie yields ok=false, never an error.
func (ts *TokenService) ReadSessionClaims(r *http.Request) (SessionClaims, bool) {
	claims, ok := ts.readCookieClaims(r, SESSION_COOKIE_NAME)
	if !ok {
		return SessionClaims{}, false
	}

	userID, _ := claims["user_id"].(string)
	deviceID, _ := claims["device_id"].(string)
	if userID == "" {
		return SessionClaims{}, false
	}
	return SessionClaims{UserID: userID, DeviceID: deviceID}, true
}

// ReadPendingDeviceClaims reads the pending device cookie from the request.
// A missing or tampered cookie yields ok=false, never an error.
func (ts *TokenService) ReadPendingDeviceClaims(r *http.Request) (PendingDeviceClaims, bool) {
	claims, ok := ts.readCookieClaims(r, PENDING_DEVICE_COOKIE_NAME)
	if !ok {
		return PendingDeviceClaims{}, false
	}

	userID, _ := claims["user_id"].(string)
	visitorData, _ := claims["visitor_data"].(string)
	if userID == "" {
		return PendingDeviceClaims{}, false
	}
	return PendingDeviceClaims{UserID: userID, VisitorData: visitorData}, true
}

func (ts *TokenService) readCookieClaims(r *http.Request, cookieName string) (jwt.MapClaims, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	token, err := ts.tokenGenerator.ParseToken(cookie.Value)
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}
