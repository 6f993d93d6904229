package http

import (
	"net/http"

	"github.com/pathwise/pathwise-gateway/internal/backend"
)

// RelayBackendSession stows the browser's Cookie header in the request context
// so every backend call made while serving this request carries the user's
// backend session.
func RelayBackendSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie := r.Header.Get("Cookie"); cookie != "" {
			r = r.WithContext(backend.WithSession(r.Context(), cookie))
		}
		next.ServeHTTP(w, r)
	})
}
