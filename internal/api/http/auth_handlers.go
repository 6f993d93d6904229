package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pathwise/pathwise-gateway/internal/auth"
	"github.com/pathwise/pathwise-gateway/internal/backend"
)

// relayCookies forwards the backend's Set-Cookie headers to the browser
// unchanged, so the backend session keeps working across page loads.
func relayCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

// issueIdentity mints the gateway's own signed cookie from the freshly
// authenticated user, next to the relayed backend session.
func issueIdentity(w http.ResponseWriter, svc *auth.Service, u backend.User) error {
	token, err := svc.Issue(u.ID, u.Name, u.Role)
	if err != nil {
		return err
	}
	http.SetCookie(w, svc.SessionCookie(token))
	return nil
}

func LoginHandler(client *backend.Client, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if creds.Email == "" || creds.Password == "" {
			http.Error(w, "email and password required", 400)
			return
		}
		u, cookies, err := client.Login(r.Context(), creds)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		relayCookies(w, cookies)
		if err := issueIdentity(w, svc, u); err != nil {
			http.Error(w, "session issue failed", 500)
			return
		}
		_ = json.NewEncoder(w).Encode(u)
	}
}

func SignupHandler(client *backend.Client, svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "name, email and password required", 400)
			return
		}
		u, cookies, err := client.Signup(r.Context(), req)
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		relayCookies(w, cookies)
		if err := issueIdentity(w, svc, u); err != nil {
			http.Error(w, "session issue failed", 500)
			return
		}
		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(u)
	}
}

func LogoutHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookies, err := client.Logout(r.Context())
		if err == nil {
			relayCookies(w, cookies)
		}
		// The gateway cookie is cleared regardless of the backend outcome.
		http.SetCookie(w, auth.ClearCookie())
		w.WriteHeader(204)
	}
}

// MeHandler resolves the current user against the backend, so a stale gateway
// cookie never outlives the real session.
func MeHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := client.CurrentUser(r.Context())
		if err != nil {
			writeBackendErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(u)
	}
}

// writeBackendErr maps a backend failure to the gateway's reply: auth failures
// pass through with their status, anything else is a 502.
func writeBackendErr(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 401 || apiErr.Status == 403 || apiErr.Status == 404 || apiErr.Status == 409 {
			http.Error(w, apiErr.Body, apiErr.Status)
			return
		}
	}
	http.Error(w, "backend unavailable", 502)
}
