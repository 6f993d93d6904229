package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pathwise/pathwise-gateway/internal/quiz"
)

func testClient(h http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	return New(srv.URL, 5*time.Second), srv
}

func TestGenerateQuizFiltersInvalid(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-quiz", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req["topic"] != "go" {
			t.Fatalf("topic = %v", req["topic"])
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz": map[string]interface{}{
				"quiz": []map[string]interface{}{
					{"question": "q1", "options": []string{"a", "b"}, "correct_answers": []int{0}},
					// No correct answer: must be dropped, not surfaced.
					{"question": "broken", "options": []string{"a", "b"}},
					{"question": "q2", "options": []string{"a", "b", "c"}, "correct_answers": []int{2}},
				},
			},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	d, err := c.GenerateQuiz(context.Background(), "go", quiz.TypeSingle, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(d.Questions))
	}
	if d.Questions[0].Text != "q1" || d.Questions[1].Text != "q2" {
		t.Fatalf("wrong questions kept: %+v", d.Questions)
	}
	// Untyped questions inherit the requested type.
	if d.Questions[0].Type != quiz.TypeSingle {
		t.Fatalf("type not defaulted: %q", d.Questions[0].Type)
	}
}

func TestGenerateQuizCapsAtRequestedCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-quiz", func(w http.ResponseWriter, r *http.Request) {
		qs := make([]map[string]interface{}, 5)
		for i := range qs {
			qs[i] = map[string]interface{}{
				"question": "q", "options": []string{"a", "b"}, "correct_answers": []int{0},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz": map[string]interface{}{"quiz": qs},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	d, err := c.GenerateQuiz(context.Background(), "go", quiz.TypeSingle, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(d.Questions))
	}
}

// Any failure surfaces as the sentinel payload on the compatibility wrapper:
// topic "error" and an empty, non-nil question list.
func TestQuizOrSentinelOnFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-quiz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", 500)
	})
	c, srv := testClient(mux)
	defer srv.Close()

	d := c.QuizOrSentinel(context.Background(), "go", quiz.TypeSingle, 3)
	if d.Topic != quiz.SentinelTopic {
		t.Fatalf("topic = %q, want %q", d.Topic, quiz.SentinelTopic)
	}
	if d.Questions == nil || len(d.Questions) != 0 {
		t.Fatalf("questions = %#v, want empty non-nil", d.Questions)
	}
	if !d.Failed() {
		t.Fatal("sentinel not detected as failed")
	}
}

func TestQuizOrSentinelOnEmptyQuiz(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-quiz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz": map[string]interface{}{"quiz": []interface{}{}},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	if d := c.QuizOrSentinel(context.Background(), "go", quiz.TypeSingle, 3); !d.Failed() {
		t.Fatalf("empty quiz not mapped to sentinel: %+v", d)
	}
}

// Every call made under WithSession must carry the browser's Cookie header.
func TestSessionCookieForwarded(t *testing.T) {
	var got string
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication/get_user", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Cookie")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "u1", "name": "Ada"},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	ctx := WithSession(context.Background(), "session=abc123")
	u, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "session=abc123" {
		t.Fatalf("cookie header = %q", got)
	}
	if u.ID != "u1" {
		t.Fatalf("user = %+v", u)
	}
}

func TestLoginRelaysCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1"})
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "u1", "name": "Ada", "email": "ada@example.com"},
		})
	})
	c, srv := testClient(mux)
	defer srv.Close()

	u, cookies, err := c.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Ada" {
		t.Fatalf("user = %+v", u)
	}
	if len(cookies) != 1 || cookies[0].Name != "session" || cookies[0].Value != "s1" {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "wrong password", 401)
	})
	c, srv := testClient(mux)
	defer srv.Close()

	_, _, err := c.Login(context.Background(), Credentials{Email: "x", Password: "y"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("err = %v", err)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"{\"a\":1}":               `{"a":1}`,
		"```{\"a\":1}```":         `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
