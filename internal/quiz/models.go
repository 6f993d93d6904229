package quiz

import (
	"errors"
	"fmt"
)

// Type is the question style a quiz is generated with.
type Type string

const (
	TypeSingle    Type = "single-correct"
	TypeTrueFalse Type = "true-false"
	TypeMulti     Type = "multiple-correct"
)

type TimeMode string

const (
	TimeModeTimed    TimeMode = "timed"
	TimeModePractice TimeMode = "practice"
)

// MaxQuestions caps how many questions one quiz may hold.
const MaxQuestions = 50

// PointsPerQuestion is the full score for one question.
const PointsPerQuestion = 4

// Config describes one quiz run. It is fixed once a session starts.
type Config struct {
	Type             Type     `json:"quiz_type"`
	TimeMode         TimeMode `json:"time_mode"`
	DurationMinutes  int      `json:"duration_minutes"`
	QuestionCount    int      `json:"question_count"`
	TimerPerQuestion bool     `json:"timer_per_question"`
	NegativeMarking  bool     `json:"negative_marking"`
}

func (c Config) Validate() error {
	switch c.Type {
	case TypeSingle, TypeTrueFalse, TypeMulti:
	default:
		return fmt.Errorf("unknown quiz type %q", c.Type)
	}
	switch c.TimeMode {
	case TimeModeTimed, TimeModePractice:
	default:
		return fmt.Errorf("unknown time mode %q", c.TimeMode)
	}
	if c.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be positive")
	}
	if c.QuestionCount <= 0 || c.QuestionCount > MaxQuestions {
		return fmt.Errorf("question_count must be 1..%d", MaxQuestions)
	}
	return nil
}

// Question is one generated quiz item. Correct holds indices into Options.
type Question struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Correct     []int    `json:"correct_answers,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Valid reports whether the question satisfies the correct-answer invariant:
// single-correct and true-false carry exactly one correct index, multiple-correct
// at least one, and every index points inside Options.
func (q Question) Valid() bool {
	if q.Text == "" || len(q.Options) < 2 {
		return false
	}
	for _, i := range q.Correct {
		if i < 0 || i >= len(q.Options) {
			return false
		}
	}
	switch q.Type {
	case TypeSingle, TypeTrueFalse:
		return len(q.Correct) == 1
	case TypeMulti:
		return len(q.Correct) >= 1
	default:
		return false
	}
}

// Data is one generated quiz. Created by a single backend call at session
// start and immutable afterwards.
type Data struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// SentinelTopic is the legacy failure marker the adapter's compatibility
// surface uses in place of an error.
const SentinelTopic = "error"

// Failed reports whether d is the adapter's failure sentinel (or otherwise
// unusable). Callers must check this before opening a session.
func (d Data) Failed() bool {
	return d.Topic == SentinelTopic || len(d.Questions) == 0
}

// Result is the scored outcome of one question. Derived at quiz end, never
// mutated afterwards.
type Result struct {
	Attempted bool `json:"attempted"`
	Correct   bool `json:"is_correct"`
	Partial   bool `json:"partially_correct"`
	Points    int  `json:"points_awarded"`
}

// Summary aggregates per-question results for one finished quiz.
type Summary struct {
	Total     int `json:"total_points"` // floored at zero
	Max       int `json:"max_points"`
	Percent   int `json:"percentage"`
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
	Partial   int `json:"partially_correct"`
}
