package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/navprep/engine/content"
	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/utils"
)

// API wraps all handler groups and their shared dependencies.
type API struct {
	sessionHandlers  *SessionHandlers
	progressHandlers *ProgressHandlers
	questionHandlers *QuestionHandlers
}

func NewAPI(questions *content.Store, manager *quiz.Manager, tracker *progress.Tracker) *API {
	return &API{
		sessionHandlers:  NewSessionHandlers(questions, manager, tracker),
		progressHandlers: NewProgressHandlers(tracker),
		questionHandlers: NewQuestionHandlers(questions),
	}
}

// NewRouter creates the API router with all endpoints.
func NewRouter(questions *content.Store, manager *quiz.Manager, tracker *progress.Tracker) http.Handler {
	api := NewAPI(questions, manager, tracker)

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	// Question bank
	r.HandleFunc("/questions", api.questionHandlers.ListQuestions).Methods(http.MethodGet)
	r.HandleFunc("/questions/{id:[0-9]+}", api.questionHandlers.GetQuestion).Methods(http.MethodGet)

	// Quiz sessions
	r.HandleFunc("/sessions", api.sessionHandlers.StartSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", api.sessionHandlers.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", api.sessionHandlers.DiscardSession).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/answer", api.sessionHandlers.SubmitAnswer).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/next", api.sessionHandlers.MoveToNext).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/previous", api.sessionHandlers.MoveToPrevious).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/jump", api.sessionHandlers.JumpTo).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/finish", api.sessionHandlers.FinishSession).Methods(http.MethodPost)

	// Progress store
	r.HandleFunc("/progress/stats", api.progressHandlers.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/progress/history", api.progressHandlers.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/progress/bookmarks", api.progressHandlers.GetBookmarks).Methods(http.MethodGet)
	r.HandleFunc("/progress/bookmarks/{id:[0-9]+}", api.progressHandlers.ToggleBookmark).Methods(http.MethodPost)
	r.HandleFunc("/progress/reset", api.progressHandlers.ResetProgress).Methods(http.MethodPost)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.LogHTTP("Health check requested")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("Failed to encode response: %v", err)
	}
}
