package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is the authenticated account the backend session cookie maps to.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User User `json:"user"`
}

// CurrentUser resolves the session cookie carried in ctx to an account.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var env userEnvelope
	if err := c.getJSON(ctx, "/authentication/get_user", &env); err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return env.User, nil
}

// Login authenticates against the backend and returns the user plus the
// session cookies the backend set, for relaying to the browser. The gateway
// never inspects the cookie contents.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, []*http.Cookie, error) {
	return c.authPost(ctx, "/authentication/login", creds)
}

// Signup registers an account; the backend signs the new user in immediately.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, []*http.Cookie, error) {
	return c.authPost(ctx, "/authentication/signup", req)
}

// Logout invalidates the backend session; the returned cookies clear it
// client-side.
func (c *Client) Logout(ctx context.Context) ([]*http.Cookie, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/authentication/logout", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.doRaw(req)
	if err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	return resp.Cookies(), nil
}

func (c *Client) authPost(ctx context.Context, path string, body interface{}) (User, []*http.Cookie, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return User{}, nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(buf))
	if err != nil {
		return User{}, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.doRaw(req)
	if err != nil {
		return User{}, nil, fmt.Errorf("auth %s: %w", path, err)
	}
	defer resp.Body.Close()
	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return User{}, nil, fmt.Errorf("auth %s: decode: %w", path, err)
	}
	return env.User, resp.Cookies(), nil
}
