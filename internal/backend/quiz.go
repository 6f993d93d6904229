package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/pathwise/pathwise-gateway/internal/quiz"
)

// ErrEmptyQuiz is returned when the backend answers but yields no usable
// questions.
var ErrEmptyQuiz = errors.New("backend produced no valid questions")

type generateQuizRequest struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
	QuestionType string `json:"question_type"`
}

// The generator wraps its payload twice: {"quiz": {"quiz": [...]}}.
type quizEnvelope struct {
	Quiz struct {
		Quiz []quiz.Question `json:"quiz"`
	} `json:"quiz"`
}

// GenerateQuiz asks the backend for a freshly generated quiz. Questions that
// violate the correct-answer invariant are dropped rather than surfaced.
func (c *Client) GenerateQuiz(ctx context.Context, topic string, qt quiz.Type, count int) (quiz.Data, error) {
	if count <= 0 || count > quiz.MaxQuestions {
		return quiz.Data{}, fmt.Errorf("question count must be 1..%d", quiz.MaxQuestions)
	}
	var env quizEnvelope
	req := generateQuizRequest{Topic: topic, NumQuestions: count, QuestionType: string(qt)}
	if err := c.postJSON(ctx, "/gemini-search/generate-quiz", req, &env); err != nil {
		return quiz.Data{}, fmt.Errorf("generate quiz: %w", err)
	}

	d := quiz.Data{Topic: topic}
	for _, q := range env.Quiz.Quiz {
		if q.Type == "" {
			q.Type = qt
		}
		if !q.Valid() {
			continue
		}
		d.Questions = append(d.Questions, q)
		if len(d.Questions) == count {
			break
		}
	}
	if len(d.Questions) == 0 {
		return quiz.Data{}, ErrEmptyQuiz
	}
	return d, nil
}

// QuizOrSentinel preserves the legacy adapter contract: any failure comes back
// as the {topic:"error"} sentinel instead of an error, and callers must check
// Data.Failed before opening a session.
func (c *Client) QuizOrSentinel(ctx context.Context, topic string, qt quiz.Type, count int) quiz.Data {
	d, err := c.GenerateQuiz(ctx, topic, qt, count)
	if err != nil {
		return quiz.Data{Topic: quiz.SentinelTopic, Questions: []quiz.Question{}}
	}
	return d
}
