package progress

import (
	"sync"
	"time"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/storage"
	"github.com/navprep/engine/utils"
)

// Tracker owns the durable progress aggregate. It is constructed once at
// startup and injected wherever statistics are read or written; there is no
// package-level instance. Every mutating call persists the whole blob
// synchronously; the payload is small and writes are driven by discrete
// user actions.
type Tracker struct {
	mu       sync.Mutex
	store    storage.BlobStore
	progress *models.UserProgress
	now      func() time.Time
}

// NewTracker loads (and if needed migrates) the persisted aggregate.
func NewTracker(store storage.BlobStore) (*Tracker, error) {
	progress, err := storage.LoadProgress(store)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		store:    store,
		progress: progress,
		now:      time.Now,
	}, nil
}

// RecordAnswer folds one answered question into the aggregate: the global
// counters, the category bucket and (when the question carries a rule label)
// the rule bucket move together, so the per-dimension sums always match the
// global totals. Membership in the incorrect set tracks the most recent
// answer for the question.
//
// Callers must invoke this exactly once per question per completed attempt.
// Immediate-feedback modes call it as each answer is submitted;
// deferred-feedback modes leave it to FinalizeSession.
func (t *Tracker) RecordAnswer(questionID int, category models.Category, rule string, isCorrect bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordAnswerLocked(questionID, category, rule, isCorrect)
	return t.saveLocked()
}

func (t *Tracker) recordAnswerLocked(questionID int, category models.Category, rule string, isCorrect bool) {
	p := t.progress
	p.QuestionsAnswered++
	if isCorrect {
		p.CorrectAnswers++
	}

	stat := p.CategoryStats[category]
	stat.Answered++
	if isCorrect {
		stat.Correct++
	}
	p.CategoryStats[category] = stat

	if rule != "" {
		rs := p.RuleStats[rule]
		rs.Answered++
		if isCorrect {
			rs.Correct++
		}
		p.RuleStats[rule] = rs
	}

	if isCorrect {
		delete(p.IncorrectQuestionIDs, questionID)
	} else {
		p.IncorrectQuestionIDs[questionID] = true
	}
}

// RecordQuizCompletion appends one history entry (evicting the oldest past
// the cap), advances the daily streak and accumulates study time. It does not
// record individual answers; see RecordAnswer and FinalizeSession.
func (t *Tracker) RecordQuizCompletion(mode string, score int, elapsed time.Duration, totalQuestions, correctCount int, questionIDs []int, answers map[int]int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordCompletionLocked(mode, score, elapsed, totalQuestions, correctCount, questionIDs, answers)
	return t.saveLocked()
}

func (t *Tracker) recordCompletionLocked(mode string, score int, elapsed time.Duration, totalQuestions, correctCount int, questionIDs []int, answers map[int]int) {
	entry := models.QuizHistoryEntry{
		Mode:           mode,
		Score:          score,
		Elapsed:        elapsed,
		TotalQuestions: totalQuestions,
		CorrectCount:   correctCount,
		QuestionIDs:    questionIDs,
		Answers:        answers,
		CompletedAt:    t.now(),
	}

	p := t.progress
	p.QuizHistory = append(p.QuizHistory, entry)
	if len(p.QuizHistory) > models.MaxHistoryEntries {
		p.QuizHistory = p.QuizHistory[len(p.QuizHistory)-models.MaxHistoryEntries:]
	}
	p.TotalStudyTime += elapsed
	t.updateStreakLocked()
}

// FinalizeSession finishes the session and records the completion exactly
// once. Deferred-feedback modes record every answered question here;
// immediate-feedback modes already recorded each answer as it was submitted,
// so only the history entry is added. Calling it again on the same session
// is a no-op.
func (t *Tracker) FinalizeSession(s *quiz.Session) error {
	s.Finish()
	if !s.MarkFinalized() {
		return nil
	}

	answers := s.Answers()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.Mode.ImmediateFeedback() {
		for _, q := range s.Questions {
			opt, ok := answers[q.ID]
			if !ok {
				continue
			}
			t.recordAnswerLocked(q.ID, q.Category, q.Rule, q.IsCorrect(opt))
		}
	}

	questionIDs := make([]int, len(s.Questions))
	for i, q := range s.Questions {
		questionIDs[i] = q.ID
	}

	t.recordCompletionLocked(string(s.Mode.Kind), s.Score(), s.Elapsed(), len(s.Questions), s.CorrectCount(), questionIDs, answers)
	utils.LogQuiz("Session %s finalized: score %d, %d/%d correct", s.ID, s.Score(), s.CorrectCount(), len(s.Questions))
	return t.saveLocked()
}

// ToggleBookmark inserts the question at the most-recent position, or removes
// it when already bookmarked. Returns whether the question is bookmarked
// afterwards.
func (t *Tracker) ToggleBookmark(questionID int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.progress
	for i, id := range p.Bookmarks {
		if id == questionID {
			p.Bookmarks = append(p.Bookmarks[:i], p.Bookmarks[i+1:]...)
			return false, t.saveLocked()
		}
	}
	p.Bookmarks = append(p.Bookmarks, questionID)
	return true, t.saveLocked()
}

// UpdateStreak advances the consecutive-day counter: first session ever and a
// gap of more than one day both (re)start at 1, the next calendar day adds 1,
// and a second session on the same day changes nothing. The last-session
// timestamp is always refreshed.
func (t *Tracker) UpdateStreak() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updateStreakLocked()
	return t.saveLocked()
}

func (t *Tracker) updateStreakLocked() {
	p := t.progress
	now := t.now()

	switch {
	case p.LastSessionDate.IsZero():
		p.StreakDays = 1
	default:
		switch dayDiff(p.LastSessionDate, now) {
		case 0:
			// same calendar day, streak unchanged
		case 1:
			p.StreakDays++
		default:
			p.StreakDays = 1
		}
	}
	p.LastSessionDate = now
}

// dayDiff counts calendar days between two instants, ignoring time of day.
func dayDiff(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// ResetProgress replaces everything with fresh defaults except bookmarks,
// which are user curation rather than performance data and survive the reset.
func (t *Tracker) ResetProgress() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	bookmarks := t.progress.Bookmarks
	t.progress = models.NewUserProgress()
	t.progress.Bookmarks = bookmarks
	utils.LogStore("Progress reset; %d bookmarks preserved", len(bookmarks))
	return t.saveLocked()
}

// Snapshot returns a deep copy of the aggregate for read-only reporting.
func (t *Tracker) Snapshot() models.UserProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := *t.progress
	p.CategoryStats = make(map[models.Category]models.Stat, len(t.progress.CategoryStats))
	for k, v := range t.progress.CategoryStats {
		p.CategoryStats[k] = v
	}
	p.RuleStats = make(map[string]models.Stat, len(t.progress.RuleStats))
	for k, v := range t.progress.RuleStats {
		p.RuleStats[k] = v
	}
	p.Bookmarks = append([]int(nil), t.progress.Bookmarks...)
	p.IncorrectQuestionIDs = make(map[int]bool, len(t.progress.IncorrectQuestionIDs))
	for k, v := range t.progress.IncorrectQuestionIDs {
		p.IncorrectQuestionIDs[k] = v
	}
	p.QuizHistory = append([]models.QuizHistoryEntry(nil), t.progress.QuizHistory...)
	return p
}

func (t *Tracker) saveLocked() error {
	if err := storage.SaveProgress(t.store, t.progress); err != nil {
		utils.LogError("Failed to persist progress: %v", err)
		return err
	}
	return nil
}
