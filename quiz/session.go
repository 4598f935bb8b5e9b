package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/utils"
)

// ErrEmptyQuestionSet is returned when a session is started with no
// questions, e.g. a category filter that matched nothing. Callers surface it
// as an empty state, not a failure.
var ErrEmptyQuestionSet = errors.New("no questions available for this quiz")

// Session drives one attempt through a fixed question list. The question
// snapshot never changes after Start; only the cursor, the answer map and the
// end timestamp do. A session is complete once EndTime is set or the cursor
// has advanced past the last question, and it never leaves that state.
//
// A session has no notion of a locked answer: the latest submission always
// wins. Immediate-feedback callers are expected to stop re-submitting once
// they have shown feedback.
type Session struct {
	ID        string
	Mode      Mode
	Questions []models.Question
	StartTime time.Time
	TimeLimit time.Duration // 0 means untimed

	mu           sync.Mutex
	currentIndex int
	answers      map[int]int // question id -> chosen option index
	endTime      time.Time   // zero until complete
	finalized    bool
}

// Start creates a new active session over a question snapshot. The time limit
// comes from the mode; a zero limit means no countdown.
func Start(mode Mode, questions []models.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	snapshot := make([]models.Question, len(questions))
	copy(snapshot, questions)

	s := &Session{
		ID:        uuid.New().String(),
		Mode:      mode,
		Questions: snapshot,
		StartTime: time.Now(),
		TimeLimit: mode.TimeLimit,
		answers:   make(map[int]int),
	}
	utils.LogQuiz("Session %s started: %s, %d questions", s.ID, mode, len(snapshot))
	return s, nil
}

// CurrentIndex returns the cursor position, in [0, len(Questions)].
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// CurrentQuestion returns the question under the cursor, or false when the
// cursor is past the end.
func (s *Session) CurrentQuestion() (models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex < 0 || s.currentIndex >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.currentIndex], true
}

// SubmitAnswer records or overwrites the answer for the current question.
// With no current question the call is a no-op, not an error: navigation and
// answering are loosely coupled. Option indexes outside the choice range are
// ignored the same way.
func (s *Session) SubmitAnswer(optionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex < 0 || s.currentIndex >= len(s.Questions) {
		return
	}
	if optionIndex < 0 || optionIndex >= models.OptionCount {
		return
	}
	s.answers[s.Questions[s.currentIndex].ID] = optionIndex
}

// MoveToNext advances the cursor. Advancing past the last question finishes
// the session; this is the only exit transition navigation can trigger.
func (s *Session) MoveToNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex >= len(s.Questions) {
		return
	}
	s.currentIndex++
	if s.currentIndex >= len(s.Questions) {
		s.finishLocked()
	}
}

// MoveToPrevious steps the cursor back, a no-op at index 0.
func (s *Session) MoveToPrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex > 0 {
		s.currentIndex--
	}
}

// JumpTo moves the cursor to an arbitrary question, clamped to the valid
// range [0, len(Questions)-1].
func (s *Session) JumpTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if max := len(s.Questions) - 1; index > max {
		index = max
	}
	s.currentIndex = index
}

// Finish ends the session. Idempotent: the end timestamp is set on the first
// call only.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

func (s *Session) finishLocked() {
	if !s.endTime.IsZero() {
		return
	}
	s.endTime = time.Now()
	utils.LogQuiz("Session %s finished: %d/%d answered", s.ID, len(s.answers), len(s.Questions))
}

// MarkFinalized flips the finalized flag and reports whether this call
// was the one that flipped it. Progress recording happens at most once
// per session no matter how many paths reach completion.
func (s *Session) MarkFinalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return false
	}
	s.finalized = true
	return true
}

// IsComplete reports whether the session has reached its terminal state.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.endTime.IsZero() || s.currentIndex >= len(s.Questions)
}

// EndTime returns the completion timestamp; zero while active.
func (s *Session) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

// Answers returns a copy of the answer map.
func (s *Session) Answers() map[int]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.answers))
	for id, opt := range s.answers {
		out[id] = opt
	}
	return out
}

// AnsweredCount returns how many questions have an answer of record.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// CorrectCount returns how many answers of record are correct.
func (s *Session) CorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correctLocked()
}

func (s *Session) correctLocked() int {
	correct := 0
	for _, q := range s.Questions {
		if opt, ok := s.answers[q.ID]; ok && q.IsCorrect(opt) {
			correct++
		}
	}
	return correct
}

// Score is the integer percentage of correct answers among answered
// questions, rounded down, and 0 when nothing has been answered.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.answers) == 0 {
		return 0
	}
	return s.correctLocked() * 100 / len(s.answers)
}

// Progress is the fraction of the question list the cursor has passed.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.currentIndex) / float64(len(s.Questions))
}

// Elapsed is the time spent in the session so far, frozen at completion.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.endTime.IsZero() {
		return s.endTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// RemainingTime returns the countdown remainder, clamped at zero. The second
// result is false for untimed sessions, where remaining time is undefined.
func (s *Session) RemainingTime() (time.Duration, bool) {
	if s.TimeLimit <= 0 {
		return 0, false
	}
	remaining := s.TimeLimit - s.Elapsed()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// IsTimeUp reports whether a timed session has run out. The timer is
// advisory: a driver polls this once per tick and calls Finish.
func (s *Session) IsTimeUp() bool {
	remaining, ok := s.RemainingTime()
	return ok && remaining == 0
}

// TimerString renders the countdown as MM:SS, empty for untimed sessions.
func (s *Session) TimerString() string {
	remaining, ok := s.RemainingTime()
	if !ok {
		return ""
	}
	return utils.FormatTimer(remaining)
}
