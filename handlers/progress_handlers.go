package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/utils"
)

// ProgressHandlers serves the aggregate progress endpoints.
type ProgressHandlers struct {
	tracker *progress.Tracker
}

func NewProgressHandlers(tracker *progress.Tracker) *ProgressHandlers {
	return &ProgressHandlers{tracker: tracker}
}

type statsResponse struct {
	QuestionsAnswered int                             `json:"questions_answered"`
	CorrectAnswers    int                             `json:"correct_answers"`
	Accuracy          float64                         `json:"accuracy"`
	Mastery           models.MasteryLevel             `json:"mastery"`
	CategoryStats     map[models.Category]models.Stat `json:"category_stats"`
	RuleStats         map[string]models.Stat          `json:"rule_stats"`
	WeakestCategory   models.Category                 `json:"weakest_category,omitempty"`
	WeakestRule       string                          `json:"weakest_rule,omitempty"`
	Recommended       models.Category                 `json:"recommended_category"`
	StreakDays        int                             `json:"streak_days"`
	StudyTimeSeconds  int                             `json:"study_time_seconds"`
}

// GetStats returns overall and per-category accuracy plus the derived
// mastery and recommendation fields.
func (h *ProgressHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := statsResponse{
		QuestionsAnswered: snapshot.QuestionsAnswered,
		CorrectAnswers:    snapshot.CorrectAnswers,
		Mastery:           h.tracker.MasteryLevel(),
		CategoryStats:     snapshot.CategoryStats,
		RuleStats:         snapshot.RuleStats,
		Recommended:       h.tracker.RecommendedCategory(),
		StreakDays:        snapshot.StreakDays,
		StudyTimeSeconds:  int(snapshot.TotalStudyTime.Seconds()),
	}
	if snapshot.QuestionsAnswered > 0 {
		resp.Accuracy = float64(snapshot.CorrectAnswers) / float64(snapshot.QuestionsAnswered) * 100
	}
	if category, ok := h.tracker.WeakestCategory(); ok {
		resp.WeakestCategory = category
	}
	if rule, ok := h.tracker.WeakestRule(); ok {
		resp.WeakestRule = rule
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetHistory returns completed quiz attempts, most recent last.
func (h *ProgressHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()
	writeJSON(w, http.StatusOK, snapshot.QuizHistory)
}

// GetBookmarks returns bookmarked question ids, most recently touched last.
func (h *ProgressHandlers) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()
	writeJSON(w, http.StatusOK, snapshot.Bookmarks)
}

// ToggleBookmark adds or removes a bookmark and reports the new state.
func (h *ProgressHandlers) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	bookmarked, err := h.tracker.ToggleBookmark(id)
	if err != nil {
		utils.LogError("Failed to toggle bookmark %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"question_id": id,
		"bookmarked":  bookmarked,
	})
}

// ResetProgress clears all statistics and history. Bookmarks survive.
func (h *ProgressHandlers) ResetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.ResetProgress(); err != nil {
		utils.LogError("Failed to reset progress: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset progress")
		return
	}

	utils.LogHTTP("Progress reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
