package export

import (
	"fmt"

	"github.com/pathwise/pathwise-gateway/internal/quiz"
)

// Artifact is one file destined for the attempt's download store.
type Artifact struct {
	FileType    string // storage key suffix, e.g. "questions.txt"
	ContentType string
	Data        []byte
}

// ReportCardFileType is the storage key for the rasterized results panel.
const ReportCardFileType = "report-card.pdf"

var textModes = []Mode{ModeQuestions, ModeAttempts, ModeAnswerKey}

// Artifacts renders the full export set for one finished quiz: every text mode
// as .txt and .pdf, plus the report card when a capture was provided. Seven
// files with a capture, six without.
func Artifacts(data quiz.Data, answers [][]int, reportCard []byte) ([]Artifact, error) {
	out := make([]Artifact, 0, 2*len(textModes)+1)
	for _, mode := range textModes {
		txt, err := Text(mode, data, answers)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", mode, err)
		}
		out = append(out, Artifact{
			FileType:    string(mode) + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(txt),
		})
		pdf, err := PDF(txt)
		if err != nil {
			return nil, fmt.Errorf("paginate %s: %w", mode, err)
		}
		out = append(out, Artifact{
			FileType:    string(mode) + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}
	if len(reportCard) > 0 {
		out = append(out, Artifact{
			FileType:    ReportCardFileType,
			ContentType: "application/pdf",
			Data:        reportCard,
		})
	}
	return out, nil
}
