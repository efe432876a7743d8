package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
)

// PerIPMiddleware rejects requests with 429 once the client IP exhausts its
// bucket. Meant for credential endpoints where brute force is a concern.
func PerIPMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				slog.Warn("rate limited", "ip", key, "path", r.URL.Path)
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. The router's RealIP middleware
// has already rewritten RemoteAddr when the app runs behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
