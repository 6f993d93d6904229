package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pathwise/pathwise-gateway/internal/auth"
	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/quiz"

	"github.com/go-chi/chi/v5"
)

// userID pulls the signed-in user out of the request. Handlers behind
// RequireUser can assume it succeeds.
func userID(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.ID
}

// sessionStatus maps quiz package errors to HTTP statuses: unknown session is
// 404, foreign session 403, every invalid transition 409.
func sessionStatus(err error) int {
	switch {
	case errors.Is(err, quiz.ErrNoSession):
		return 404
	case errors.Is(err, quiz.ErrNotYours):
		return 403
	case errors.Is(err, quiz.ErrBadQuestion), errors.Is(err, quiz.ErrBadOption):
		return 400
	default:
		return 409
	}
}

func writeSessionErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), sessionStatus(err))
}

type createQuizRequest struct {
	Topic  string      `json:"topic"`
	Config quiz.Config `json:"config"`
}

// CreateQuizHandler generates a quiz through the backend and opens a session
// on it. Generation failures come back as the sentinel payload, never as a
// playable session.
func CreateQuizHandler(client *backend.Client, mgr *quiz.Manager, onComplete quiz.CompletionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createQuizRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.Topic == "" {
			http.Error(w, "topic required", 400)
			return
		}
		if err := req.Config.Validate(); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}

		data := client.QuizOrSentinel(r.Context(), req.Topic, req.Config.Type, req.Config.QuestionCount)
		if data.Failed() {
			http.Error(w, "quiz generation failed", 502)
			return
		}
		// Generation may return fewer valid questions than asked for; the
		// session plays what actually arrived.
		req.Config.QuestionCount = len(data.Questions)

		s := mgr.Create(userID(r), req.Config, data, onComplete)
		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

func StartQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Start(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

func GetQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

func DeleteQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.Close(chi.URLParam(r, "sessionID"), userID(r))
		w.WriteHeader(204)
	}
}

type answerRequest struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

// AnswerHandler records a selection: single-answer quizzes replace it,
// multiple-correct quizzes toggle the option.
func AnswerHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		if err := s.Select(req.Question, req.Option); err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

func ClearAnswerHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		if err := s.Clear(req.Question); err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

// navigate wraps the shared shape of next/previous/goto/submit.
func navigate(mgr *quiz.Manager, step func(*quiz.Session, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		if err := step(s, r); err != nil {
			writeSessionErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(s.View())
	}
}

func NextQuestionHandler(mgr *quiz.Manager) http.HandlerFunc {
	return navigate(mgr, func(s *quiz.Session, _ *http.Request) error { return s.Next() })
}

func PreviousQuestionHandler(mgr *quiz.Manager) http.HandlerFunc {
	return navigate(mgr, func(s *quiz.Session, _ *http.Request) error { return s.Previous() })
}

func GotoQuestionHandler(mgr *quiz.Manager) http.HandlerFunc {
	return navigate(mgr, func(s *quiz.Session, r *http.Request) error {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return quiz.ErrBadQuestion
		}
		return s.Goto(req.Question)
	})
}

// SubmitQuizHandler ends the quiz. Only valid from the last question; the
// timers end it through their own paths.
func SubmitQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return navigate(mgr, func(s *quiz.Session, _ *http.Request) error { return s.Submit() })
}
