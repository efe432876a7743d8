package web

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tendant/device-trust-demo/pkg/tokengenerator"
)

// TokenFromSessionCookie extracts the session JWT from its cookie
func TokenFromSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(tokengenerator.SESSION_COOKIE_NAME)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Verifier parses the session cookie and stores the result in the request
// context. It never rejects the request itself; handlers decide whether an
// anonymous browser gets a redirect or the page.
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verify(ja, TokenFromSessionCookie)(next)
	}
}

// sessionFromContext pulls the verified session claims out of the request
// context. ok is false for anonymous, expired or tampered sessions.
func sessionFromContext(r *http.Request) (tokengenerator.SessionClaims, bool) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return tokengenerator.SessionClaims{}, false
	}

	userID, _ := claims["user_id"].(string)
	deviceID, _ := claims["device_id"].(string)
	if userID == "" {
		return tokengenerator.SessionClaims{}, false
	}
	return tokengenerator.SessionClaims{UserID: userID, DeviceID: deviceID}, true
}
