// Package export renders a finished quiz into its downloadable artifacts:
// three plain-text modes, their paginated PDF forms, and the report-card PDF
// built from a capture of the results panel.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-gateway/internal/quiz"
)

// Mode selects which text artifact to render.
type Mode string

const (
	ModeQuestions Mode = "questions"     // questions and options only
	ModeAttempts  Mode = "with-attempts" // plus the user's and correct answers
	ModeAnswerKey Mode = "answer-key"    // plus correct answers, no attempts
)

// ParseMode validates a client-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeQuestions, ModeAttempts, ModeAnswerKey:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown export mode %q", s)
}

// Text renders one artifact mode. answers is indexed by question; it may be
// nil for ModeQuestions and ModeAnswerKey.
func Text(mode Mode, data quiz.Data, answers [][]int) (string, error) {
	switch mode {
	case ModeQuestions, ModeAttempts, ModeAnswerKey:
	default:
		return "", fmt.Errorf("unknown export mode %q", mode)
	}
	if mode == ModeAttempts && len(answers) != len(data.Questions) {
		return "", errors.New("answers do not match question count")
	}

	var b strings.Builder
	for i, q := range data.Questions {
		fmt.Fprintf(&b, "Q%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "   %s. %s\n", letter(j), opt)
		}
		if mode == ModeAttempts {
			fmt.Fprintf(&b, "   Your answer: %s\n", lettersOrDash(answers[i]))
		}
		if mode == ModeAttempts || mode == ModeAnswerKey {
			fmt.Fprintf(&b, "   Correct answer: %s\n", lettersOrDash(q.Correct))
			if q.Explanation != "" {
				fmt.Fprintf(&b, "   Explanation: %s\n", q.Explanation)
			}
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// letter maps option index 0,1,2,... to A,B,C,...
func letter(i int) string {
	return string(rune('A' + i))
}

func lettersOrDash(indices []int) string {
	if len(indices) == 0 {
		return "-"
	}
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = letter(idx)
	}
	return strings.Join(parts, ", ")
}
