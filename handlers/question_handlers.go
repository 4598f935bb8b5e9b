package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/navprep/engine/content"
	"github.com/navprep/engine/models"
)

// QuestionHandlers serves read-only access to the question bank.
type QuestionHandlers struct {
	questions *content.Store
}

func NewQuestionHandlers(questions *content.Store) *QuestionHandlers {
	return &QuestionHandlers{questions: questions}
}

// ListQuestions returns the bank, optionally filtered by ?category= or
// ?rule=. Category takes precedence when both are given.
func (h *QuestionHandlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	var result []models.Question
	switch {
	case r.URL.Query().Get("category") != "":
		result = h.questions.ByCategory(models.Category(r.URL.Query().Get("category")))
	case r.URL.Query().Get("rule") != "":
		result = h.questions.ByRule(r.URL.Query().Get("rule"))
	default:
		result = h.questions.All()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(result),
		"questions": result,
	})
}

// GetQuestion returns a single question by id.
func (h *QuestionHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	q, ok := h.questions.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}

	writeJSON(w, http.StatusOK, q)
}
