package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/navprep/engine/content"
	"github.com/navprep/engine/models"
	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/utils"
)

// SessionHandlers serves the quiz session lifecycle endpoints.
type SessionHandlers struct {
	questions *content.Store
	manager   *quiz.Manager
	tracker   *progress.Tracker
}

func NewSessionHandlers(questions *content.Store, manager *quiz.Manager, tracker *progress.Tracker) *SessionHandlers {
	return &SessionHandlers{questions: questions, manager: manager, tracker: tracker}
}

type startSessionRequest struct {
	Mode             string `json:"mode"`
	Category         string `json:"category,omitempty"`
	Count            int    `json:"count,omitempty"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty"`
}

type submitAnswerRequest struct {
	OptionIndex int `json:"option_index"`
}

type jumpRequest struct {
	Index int `json:"index"`
}

// questionView hides the answer key while a deferred-feedback session is
// still active.
type questionView struct {
	ID            int             `json:"id"`
	Text          string          `json:"text"`
	Options       []string        `json:"options"`
	DiagramRef    string          `json:"diagram_ref,omitempty"`
	Category      models.Category `json:"category"`
	Rule          string          `json:"rule,omitempty"`
	CorrectOption *int            `json:"correct_option,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
}

type sessionView struct {
	ID              string        `json:"id"`
	Mode            quiz.Mode     `json:"mode"`
	CurrentIndex    int           `json:"current_index"`
	TotalQuestions  int           `json:"total_questions"`
	AnsweredCount   int           `json:"answered_count"`
	Progress        float64       `json:"progress"`
	Complete        bool          `json:"complete"`
	Answers         map[int]int   `json:"answers"`
	CurrentQuestion *questionView `json:"current_question,omitempty"`
	Timer           string        `json:"timer,omitempty"`
	Score           int           `json:"score,omitempty"`
	CorrectCount    int           `json:"correct_count,omitempty"`
	ElapsedSeconds  int           `json:"elapsed_seconds,omitempty"`
}

func newQuestionView(q models.Question, revealAnswer bool) *questionView {
	v := &questionView{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options[:],
		DiagramRef: q.DiagramRef,
		Category:   q.Category,
		Rule:       q.Rule,
	}
	if revealAnswer {
		correct := q.CorrectOption
		v.CorrectOption = &correct
		v.Explanation = q.Explanation
	}
	return v
}

func newSessionView(s *quiz.Session) sessionView {
	complete := s.IsComplete()
	view := sessionView{
		ID:             s.ID,
		Mode:           s.Mode,
		CurrentIndex:   s.CurrentIndex(),
		TotalQuestions: len(s.Questions),
		AnsweredCount:  s.AnsweredCount(),
		Progress:       s.Progress(),
		Complete:       complete,
		Answers:        s.Answers(),
	}
	if q, ok := s.CurrentQuestion(); ok {
		view.CurrentQuestion = newQuestionView(q, s.Mode.ImmediateFeedback())
	}
	if s.Mode.Timed() {
		view.Timer = s.TimerString()
	}
	if complete {
		view.Score = s.Score()
		view.CorrectCount = s.CorrectCount()
		view.ElapsedSeconds = int(s.Elapsed().Seconds())
	}
	return view
}

// StartSession builds the question set for the requested mode and registers
// a new session.
func (h *SessionHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, pool, err := h.buildSession(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := quiz.Start(mode, pool)
	if err != nil {
		if errors.Is(err, quiz.ErrEmptyQuestionSet) {
			writeError(w, http.StatusNotFound, "no questions available for this mode")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	h.manager.Add(session)
	if err := h.tracker.UpdateStreak(); err != nil {
		utils.LogError("Failed to update streak: %v", err)
	}

	utils.LogHTTP("Started session %s: %s", session.ID, mode)
	writeJSON(w, http.StatusCreated, newSessionView(session))
}

// buildSession translates the request into a mode and its question pool.
func (h *SessionHandlers) buildSession(req startSessionRequest) (quiz.Mode, []models.Question, error) {
	category := models.Category(req.Category)

	switch quiz.ModeKind(req.Mode) {
	case quiz.ModePractice:
		return quiz.Practice(category), h.poolForCategory(category), nil
	case quiz.ModeStudy:
		return quiz.Study(category), h.poolForCategory(category), nil
	case quiz.ModeExam:
		count := req.Count
		if count <= 0 {
			count = utils.GetEnvInt("EXAM_QUESTION_COUNT", 30)
		}
		limit := time.Duration(req.TimeLimitSeconds) * time.Second
		if req.TimeLimitSeconds <= 0 {
			limit = time.Duration(utils.GetEnvInt("EXAM_TIME_LIMIT_SECONDS", 1800)) * time.Second
		}
		return quiz.Exam(count, limit), h.questions.SampleAll(count), nil
	case quiz.ModeQuickQuiz:
		count := req.Count
		if count <= 0 {
			count = 10
		}
		return quiz.QuickQuiz(count), h.questions.SampleAll(count), nil
	case quiz.ModeReview:
		snapshot := h.tracker.Snapshot()
		ids := make([]int, 0, len(snapshot.IncorrectQuestionIDs))
		for id := range snapshot.IncorrectQuestionIDs {
			ids = append(ids, id)
		}
		return quiz.Review(), h.questions.ByIDs(ids), nil
	default:
		return quiz.Mode{}, nil, errors.New("unknown mode: " + req.Mode)
	}
}

func (h *SessionHandlers) poolForCategory(category models.Category) []models.Question {
	if category == "" {
		return h.questions.All()
	}
	return h.questions.ByCategory(category)
}

// GetSession returns the current view of a session.
func (h *SessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(session))
}

// DiscardSession ends a session early. Answers already recorded against
// progress stay recorded; no history entry is written.
func (h *SessionHandlers) DiscardSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	session.Finish()
	session.MarkFinalized()
	h.manager.Remove(session.ID)

	utils.LogHTTP("Discarded session %s", session.ID)
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer records the chosen option for the current question. In
// immediate-feedback modes the outcome is written to progress on the first
// submission and the answer key is returned; re-submissions overwrite the
// session answer only.
func (h *SessionHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, hasQuestion := session.CurrentQuestion()
	if !hasQuestion {
		writeJSON(w, http.StatusOK, newSessionView(session))
		return
	}

	_, answeredBefore := session.Answers()[q.ID]
	session.SubmitAnswer(req.OptionIndex)

	if session.Mode.ImmediateFeedback() && !answeredBefore {
		if _, answeredNow := session.Answers()[q.ID]; answeredNow {
			if err := h.tracker.RecordAnswer(q.ID, q.Category, q.Rule, q.IsCorrect(req.OptionIndex)); err != nil {
				utils.LogError("Failed to record answer for question %d: %v", q.ID, err)
			}
		}
	}

	writeJSON(w, http.StatusOK, newSessionView(session))
}

// MoveToNext advances the cursor. Moving past the last question completes
// the session and records it against progress.
func (h *SessionHandlers) MoveToNext(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	session.MoveToNext()
	if session.IsComplete() {
		if err := h.tracker.FinalizeSession(session); err != nil {
			utils.LogError("Failed to finalize session %s: %v", session.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, newSessionView(session))
}

func (h *SessionHandlers) MoveToPrevious(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.MoveToPrevious()
	writeJSON(w, http.StatusOK, newSessionView(session))
}

func (h *SessionHandlers) JumpTo(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session.JumpTo(req.Index)
	writeJSON(w, http.StatusOK, newSessionView(session))
}

// FinishSession completes the session and records the attempt.
func (h *SessionHandlers) FinishSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.tracker.FinalizeSession(session); err != nil {
		utils.LogError("Failed to finalize session %s: %v", session.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}

	writeJSON(w, http.StatusOK, resultView(session))
}

// resultView reveals the full answer key alongside the final score.
func resultView(s *quiz.Session) map[string]interface{} {
	questions := make([]*questionView, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = newQuestionView(q, true)
	}
	return map[string]interface{}{
		"id":              s.ID,
		"mode":            s.Mode,
		"score":           s.Score(),
		"correct_count":   s.CorrectCount(),
		"answered_count":  s.AnsweredCount(),
		"total_questions": len(s.Questions),
		"elapsed_seconds": int(s.Elapsed().Seconds()),
		"answers":         s.Answers(),
		"questions":       questions,
	}
}

func (h *SessionHandlers) lookup(w http.ResponseWriter, r *http.Request) (*quiz.Session, bool) {
	id := mux.Vars(r)["id"]
	session, ok := h.manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return session, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
