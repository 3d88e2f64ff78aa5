package api

import (
	"net/http"
)

// secretHeader carries the dashboard's shared secret on every API call.
const secretHeader = "X-Dashboard-Secret"

// RequireSecret rejects API requests that don't carry the configured shared
// secret. An empty configured secret disables the check, which keeps local
// development setups working without extra env.
func (s *Server) RequireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Config.APISecret != "" && r.Header.Get(secretHeader) != s.Config.APISecret {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit applies the per-client token bucket. Requests without a client_id
// fall through; the handler rejects those with a 400 anyway.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.URL.Query().Get("client_id")
		if clientID != "" && s.Limiter != nil && !s.Limiter.Allow(clientID) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
