package models

import "time"

// Stat is an answered/correct counter pair for one category or rule.
type Stat struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Accuracy returns the fraction of correct answers, 0 when nothing answered.
func (s Stat) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

// QuizHistoryEntry is one completed session recorded in the history log.
type QuizHistoryEntry struct {
	Mode           string        `json:"mode"`
	Score          int           `json:"score"`
	Elapsed        time.Duration `json:"elapsed"`
	TotalQuestions int           `json:"total_questions"`
	CorrectCount   int           `json:"correct_count"`
	QuestionIDs    []int         `json:"question_ids"`
	Answers        map[int]int   `json:"answers"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// MaxHistoryEntries bounds the history log; the oldest entry is evicted when
// a completion would exceed it.
const MaxHistoryEntries = 20

// UserProgress is the durable all-time aggregate persisted as one blob.
// CurrentVersion in the storage package tracks its schema.
type UserProgress struct {
	QuestionsAnswered    int                 `json:"questions_answered"`
	CorrectAnswers       int                 `json:"correct_answers"`
	CategoryStats        map[Category]Stat   `json:"category_stats"`
	RuleStats            map[string]Stat     `json:"rule_stats"`
	Bookmarks            []int               `json:"bookmarks"`
	IncorrectQuestionIDs map[int]bool        `json:"incorrect_question_ids"`
	QuizHistory          []QuizHistoryEntry  `json:"quiz_history"`
	LastSessionDate      time.Time           `json:"last_session_date"`
	StreakDays           int                 `json:"streak_days"`
	TotalStudyTime       time.Duration       `json:"total_study_time"`
}

// NewUserProgress returns an empty aggregate with all collections allocated.
func NewUserProgress() *UserProgress {
	return &UserProgress{
		CategoryStats:        make(map[Category]Stat),
		RuleStats:            make(map[string]Stat),
		Bookmarks:            make([]int, 0),
		IncorrectQuestionIDs: make(map[int]bool),
		QuizHistory:          make([]QuizHistoryEntry, 0),
	}
}

// Normalize heals nil collections after deserialization of older payloads;
// fields added in newer schema versions default to empty.
func (p *UserProgress) Normalize() {
	if p.CategoryStats == nil {
		p.CategoryStats = make(map[Category]Stat)
	}
	if p.RuleStats == nil {
		p.RuleStats = make(map[string]Stat)
	}
	if p.Bookmarks == nil {
		p.Bookmarks = make([]int, 0)
	}
	if p.IncorrectQuestionIDs == nil {
		p.IncorrectQuestionIDs = make(map[int]bool)
	}
	if p.QuizHistory == nil {
		p.QuizHistory = make([]QuizHistoryEntry, 0)
	}
}

// MasteryLevel is the six-tier classification of global accuracy.
type MasteryLevel string

const (
	MasteryBeginner     MasteryLevel = "Beginner"
	MasteryNovice       MasteryLevel = "Novice"
	MasteryIntermediate MasteryLevel = "Intermediate"
	MasteryAdvanced     MasteryLevel = "Advanced"
	MasteryExpert       MasteryLevel = "Expert"
	MasteryMaster       MasteryLevel = "Master"
)
