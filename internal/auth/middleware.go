package auth

import (
	"context"
	"net/http"
)

// Identity is the signed-in user attached to a request.
type Identity struct {
	ID   string
	Name string
	Role string
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return v, ok
}

// Middleware attaches the identity from the gateway cookie when present;
// requests without one pass through anonymous.
func Middleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if claims, err := s.Parse(c.Value); err == nil {
					ctx := WithIdentity(r.Context(), Identity{
						ID:   claims.Sub,
						Name: claims.Name,
						Role: claims.Role,
					})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects anonymous requests. Actions like quiz generation are
// gated here before any backend call is attempted.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			http.Error(w, "sign in required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
