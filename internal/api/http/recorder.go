package http

import (
	"context"
	"log"
	"time"

	"github.com/pathwise/pathwise-gateway/internal/progress"
	"github.com/pathwise/pathwise-gateway/internal/quiz"

	"github.com/google/uuid"
)

// NewAttemptRecorder builds the completion hook wired into every session: when
// a quiz ends it mints the quiz_attempt_id, files the attempt, and stamps the
// id back onto the session so exports and uploads can reference it.
func NewAttemptRecorder(store *progress.Store) quiz.CompletionFunc {
	return func(s *quiz.Session, sum quiz.Summary) {
		results, _, err := s.Results()
		if err != nil {
			log.Printf("record attempt: results unavailable: %v", err)
			return
		}
		attemptID := uuid.NewString()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = store.RecordAttempt(ctx, progress.Attempt{
			ID:              attemptID,
			UserID:          s.UserID,
			Topic:           s.Data.Topic,
			QuizType:        string(s.Config.Type),
			QuestionCount:   len(s.Data.Questions),
			NegativeMarking: s.Config.NegativeMarking,
			TotalPoints:     sum.Total,
			Percent:         sum.Percent,
			Results:         results,
		})
		if err != nil {
			log.Printf("record attempt %s: %v", attemptID, err)
			return
		}
		s.SetAttemptID(attemptID)
	}
}
