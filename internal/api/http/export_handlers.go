package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pathwise/pathwise-gateway/internal/export"
	"github.com/pathwise/pathwise-gateway/internal/quiz"
	"github.com/pathwise/pathwise-gateway/internal/uploads"

	"github.com/go-chi/chi/v5"
)

// maxCaptureBytes caps the posted report-card capture.
const maxCaptureBytes = 16 << 20

// QuizResultsHandler returns the per-question outcomes and summary of an
// ended session.
func QuizResultsHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
		if err != nil {
			writeSessionErr(w, err)
			return
		}
		results, sum, err := s.Results()
		if err != nil {
			http.Error(w, "quiz not finished", 409)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz_attempt_id": s.AttemptID(),
			"results":         results,
			"summary":         sum,
		})
	}
}

// endedSession loads the caller's session and rejects it unless it has ended;
// exports of a running quiz would leak the answer key.
func endedSession(mgr *quiz.Manager, w http.ResponseWriter, r *http.Request) (*quiz.Session, bool) {
	s, err := mgr.Get(chi.URLParam(r, "sessionID"), userID(r))
	if err != nil {
		writeSessionErr(w, err)
		return nil, false
	}
	if s.State() != quiz.StateEnded {
		http.Error(w, "quiz not finished", 409)
		return nil, false
	}
	return s, true
}

// ExportQuizHandler renders one export of a finished quiz. mode selects the
// content (questions, with-attempts, answer-key), format selects txt or pdf.
func ExportQuizHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := export.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "txt"
		}
		if format != "txt" && format != "pdf" {
			http.Error(w, "format must be txt or pdf", 400)
			return
		}

		s, ok := endedSession(mgr, w, r)
		if !ok {
			return
		}
		txt, err := export.Text(mode, s.Data, s.Answers())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		filename := string(mode) + "." + format
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if format == "txt" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = io.WriteString(w, txt)
			return
		}
		pdf, err := export.PDF(txt)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		_, _ = w.Write(pdf)
	}
}

// ReportCardHandler turns a posted PNG capture of the results panel into a
// paginated PDF and returns it for download.
func ReportCardHandler(mgr *quiz.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := endedSession(mgr, w, r); !ok {
			return
		}
		pdf, err := export.ReportCardPNG(io.LimitReader(r.Body, maxCaptureBytes))
		if err != nil {
			http.Error(w, "bad capture: "+err.Error(), 400)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="report-card.pdf"`)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		_, _ = w.Write(pdf)
	}
}

// UploadArtifactsHandler renders the finished quiz's full artifact set and
// pushes it to backend storage in one concurrent batch. A PNG capture posted
// as the body adds the report card to the set. The uploaded flag is recorded
// once per attempt, no matter how often the batch is retried.
func UploadArtifactsHandler(mgr *quiz.Manager, up *uploads.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := endedSession(mgr, w, r)
		if !ok {
			return
		}
		attemptID := s.AttemptID()
		if attemptID == "" {
			http.Error(w, "attempt not recorded yet", 409)
			return
		}

		var reportCard []byte
		if r.Header.Get("Content-Type") == "image/png" {
			pdf, err := export.ReportCardPNG(io.LimitReader(r.Body, maxCaptureBytes))
			if err != nil {
				http.Error(w, "bad capture: "+err.Error(), 400)
				return
			}
			reportCard = pdf
		}

		arts, err := export.Artifacts(s.Data, s.Answers(), reportCard)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		res, marked, err := up.UploadAll(r.Context(), attemptID, arts)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"quiz_attempt_id": attemptID,
			"uploaded":        res.AllOK(),
			"failed":          res.Failed(),
			"marked":          marked,
			"outcomes":        res.Outcomes,
		})
	}
}
