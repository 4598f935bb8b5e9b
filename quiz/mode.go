package quiz

import (
	"fmt"
	"time"

	"github.com/navprep/engine/models"
)

// ModeKind discriminates the quiz mode variants.
type ModeKind string

const (
	ModePractice  ModeKind = "practice"
	ModeExam      ModeKind = "exam"
	ModeQuickQuiz ModeKind = "quick_quiz"
	ModeReview    ModeKind = "review"
	ModeStudy     ModeKind = "study"
)

// Mode is a tagged variant: the Kind decides which fields are meaningful.
// Practice and study may carry a category filter; exam and quick quiz carry a
// question count; only exam may carry a time limit.
type Mode struct {
	Kind      ModeKind        `json:"kind"`
	Category  models.Category `json:"category,omitempty"`
	Count     int             `json:"count,omitempty"`
	TimeLimit time.Duration   `json:"time_limit,omitempty"`
}

// Practice returns a practice mode, optionally filtered to one category.
func Practice(category models.Category) Mode {
	return Mode{Kind: ModePractice, Category: category}
}

// Exam returns a timed or untimed exam over count questions.
func Exam(count int, timeLimit time.Duration) Mode {
	return Mode{Kind: ModeExam, Count: count, TimeLimit: timeLimit}
}

// QuickQuiz returns a short untimed quiz over count questions.
func QuickQuiz(count int) Mode {
	return Mode{Kind: ModeQuickQuiz, Count: count}
}

// Review returns the mode that replays previously missed questions.
func Review() Mode {
	return Mode{Kind: ModeReview}
}

// Study returns study mode, optionally filtered to one category.
func Study(category models.Category) Mode {
	return Mode{Kind: ModeStudy, Category: category}
}

// ImmediateFeedback reports whether answers are scored and shown as they are
// submitted. Deferred modes reveal results only after the session finishes,
// and their outcomes are recorded against progress in one pass on completion.
func (m Mode) ImmediateFeedback() bool {
	return m.Kind == ModePractice || m.Kind == ModeStudy
}

// Timed reports whether a countdown applies.
func (m Mode) Timed() bool {
	return m.Kind == ModeExam && m.TimeLimit > 0
}

func (m Mode) String() string {
	switch m.Kind {
	case ModePractice, ModeStudy:
		if m.Category != "" {
			return fmt.Sprintf("%s (%s)", m.Kind, m.Category)
		}
		return string(m.Kind)
	case ModeExam:
		if m.TimeLimit > 0 {
			return fmt.Sprintf("%s (%d questions, %s)", m.Kind, m.Count, m.TimeLimit)
		}
		return fmt.Sprintf("%s (%d questions)", m.Kind, m.Count)
	case ModeQuickQuiz:
		return fmt.Sprintf("%s (%d questions)", m.Kind, m.Count)
	default:
		return string(m.Kind)
	}
}
