package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pathwise/pathwise-gateway/internal/auth"
	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/db"
	"github.com/pathwise/pathwise-gateway/internal/progress"
	"github.com/pathwise/pathwise-gateway/internal/quiz"

	"github.com/go-chi/chi/v5"
)

// fakeBackend serves the generation endpoint with a fixed two-question quiz.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/gemini-search/generate-quiz", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz": map[string]interface{}{
				"quiz": []map[string]interface{}{
					{"question": "first", "options": []string{"a", "b"}, "correct_answers": []int{0}, "explanation": "because"},
					{"question": "second", "options": []string{"x", "y", "z"}, "correct_answers": []int{2}},
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	router chi.Router
	cookie *http.Cookie
	store  *progress.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	be := fakeBackend(t)
	client := backend.New(be.URL, 5*time.Second)

	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.TempDir()+"/gateway.db?cache=shared&mode=rwc")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	store := progress.NewStore(dbh, "sqlite")

	svc := auth.NewService("test-secret", time.Hour)
	token, err := svc.Issue("u1", "Ada", "student")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mgr := quiz.NewManager(nil)
	onComplete := NewAttemptRecorder(store)

	r := chi.NewRouter()
	r.Use(RelayBackendSession)
	r.Use(auth.Middleware(svc))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Post("/quiz", CreateQuizHandler(client, mgr, onComplete))
		pr.Route("/quiz/{sessionID}", func(sr chi.Router) {
			sr.Get("/", GetQuizHandler(mgr))
			sr.Post("/start", StartQuizHandler(mgr))
			sr.Post("/answer", AnswerHandler(mgr))
			sr.Post("/goto", GotoQuestionHandler(mgr))
			sr.Post("/submit", SubmitQuizHandler(mgr))
			sr.Get("/results", QuizResultsHandler(mgr))
			sr.Get("/export", ExportQuizHandler(mgr))
		})
	})

	return &testEnv{router: r, cookie: svc.SessionCookie(token), store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, signedIn bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if signedIn {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) quiz.View {
	t.Helper()
	var v quiz.View
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestCreateQuizRequiresUser(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, "POST", "/quiz", createQuizRequest{
		Topic: "go",
		Config: quiz.Config{
			Type: quiz.TypeSingle, TimeMode: quiz.TimeModePractice,
			DurationMinutes: 10, QuestionCount: 2,
		},
	}, false)
	if w.Code != 401 {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestQuizFlow(t *testing.T) {
	e := newTestEnv(t)
	cfg := quiz.Config{
		Type: quiz.TypeSingle, TimeMode: quiz.TimeModePractice,
		DurationMinutes: 10, QuestionCount: 2, NegativeMarking: true,
	}

	w := e.do(t, "POST", "/quiz", createQuizRequest{Topic: "go", Config: cfg}, true)
	if w.Code != 201 {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	v := decodeView(t, w)
	if len(v.Questions) != 2 || v.State != quiz.StateNotStarted {
		t.Fatalf("view = %+v", v)
	}
	// Answers and explanations stay hidden while the quiz runs.
	for _, q := range v.Questions {
		if len(q.Correct) != 0 || q.Explanation != "" {
			t.Fatalf("answer key leaked: %+v", q)
		}
	}
	id := v.ID

	if w := e.do(t, "POST", "/quiz/"+id+"/start", nil, true); w.Code != 200 {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	// Correct on the first question, wrong on the second.
	if w := e.do(t, "POST", "/quiz/"+id+"/answer", answerRequest{Question: 0, Option: 0}, true); w.Code != 200 {
		t.Fatalf("answer: %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, "POST", "/quiz/"+id+"/answer", answerRequest{Question: 1, Option: 0}, true); w.Code != 200 {
		t.Fatalf("answer: %d %s", w.Code, w.Body.String())
	}

	// Submit is only valid from the last question.
	if w := e.do(t, "POST", "/quiz/"+id+"/submit", nil, true); w.Code != 409 {
		t.Fatalf("early submit: %d", w.Code)
	}
	if w := e.do(t, "POST", "/quiz/"+id+"/goto", answerRequest{Question: 1}, true); w.Code != 200 {
		t.Fatalf("goto: %d", w.Code)
	}
	if w := e.do(t, "POST", "/quiz/"+id+"/submit", nil, true); w.Code != 200 {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, "GET", "/quiz/"+id+"/results", nil, true)
	if w.Code != 200 {
		t.Fatalf("results: %d %s", w.Code, w.Body.String())
	}
	var res struct {
		Results []quiz.Result `json:"results"`
		Summary quiz.Summary  `json:"summary"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	// +4 and -1 under negative marking: 3 of 8 points, 38%.
	if res.Summary.Total != 3 || res.Summary.Percent != 38 {
		t.Fatalf("summary = %+v", res.Summary)
	}
	if !res.Results[0].Correct || res.Results[1].Correct {
		t.Fatalf("results = %+v", res.Results)
	}

	// The completion hook files the attempt asynchronously.
	var attempts []progress.Attempt
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var err error
		attempts, err = e.store.ListAttempts(context.Background(), "u1", 10, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(attempts) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(attempts) != 1 || attempts[0].Percent != 38 || attempts[0].Topic != "go" {
		t.Fatalf("recorded attempts = %+v", attempts)
	}

	w = e.do(t, "GET", "/quiz/"+id+"/export?mode=answer-key&format=txt", nil, true)
	if w.Code != 200 {
		t.Fatalf("export: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "Q1. first") || !strings.Contains(body, "Correct answer: A") {
		t.Fatalf("export body:\n%s", body)
	}
}

func TestExportRejectsRunningQuiz(t *testing.T) {
	e := newTestEnv(t)
	cfg := quiz.Config{
		Type: quiz.TypeSingle, TimeMode: quiz.TimeModePractice,
		DurationMinutes: 10, QuestionCount: 2,
	}
	w := e.do(t, "POST", "/quiz", createQuizRequest{Topic: "go", Config: cfg}, true)
	v := decodeView(t, w)
	e.do(t, "POST", "/quiz/"+v.ID+"/start", nil, true)

	if w := e.do(t, "GET", "/quiz/"+v.ID+"/export?mode=answer-key", nil, true); w.Code != 409 {
		t.Fatalf("export of running quiz: %d", w.Code)
	}
}
