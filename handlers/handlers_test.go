package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/navprep/engine/content"
	"github.com/navprep/engine/handlers"
	"github.com/navprep/engine/models"
	"github.com/navprep/engine/progress"
	"github.com/navprep/engine/quiz"
	"github.com/navprep/engine/storage"
)

func testQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		category := models.CategorySteering
		if i%2 == 1 {
			category = models.CategoryLights
		}
		questions[i] = models.Question{
			ID:            i + 1,
			Text:          fmt.Sprintf("q%d", i+1),
			Options:       [models.OptionCount]string{"right", "wrong", "wrong", "wrong"},
			CorrectOption: 0,
			Category:      category,
			Rule:          "Rule 5",
		}
	}
	return questions
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	blobStore, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	t.Cleanup(func() { blobStore.Close() })

	tracker, err := progress.NewTracker(blobStore)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	store := content.NewStore(testQuestions(10))
	return handlers.NewRouter(store, quiz.NewManager(), tracker)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != wantStatus {
		t.Fatalf("%s %s = %d, want %d; body: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}

	if rec.Body.Len() == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, rec.Body.String())
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)
	out := doJSON(t, router, http.MethodGet, "/health", nil, http.StatusOK)
	if out["status"] != "ok" {
		t.Fatalf("health = %v", out)
	}
}

func TestQuickQuizLifecycle(t *testing.T) {
	router := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "quick_quiz", "count": 3}, http.StatusCreated)

	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("no session id in %v", created)
	}
	if created["total_questions"].(float64) != 3 {
		t.Fatalf("total_questions = %v", created["total_questions"])
	}
	// Deferred feedback: the answer key stays hidden while active.
	if q, ok := created["current_question"].(map[string]interface{}); !ok {
		t.Fatalf("no current question in %v", created)
	} else if _, leaked := q["correct_option"]; leaked {
		t.Fatal("answer key leaked in a deferred-feedback session")
	}

	base := "/sessions/" + id
	for i := 0; i < 3; i++ {
		doJSON(t, router, http.MethodPost, base+"/answer", map[string]int{"option_index": 0}, http.StatusOK)
		state := doJSON(t, router, http.MethodPost, base+"/next", nil, http.StatusOK)
		complete := state["complete"].(bool)
		if (i < 2) == complete {
			t.Fatalf("step %d: complete = %v", i, complete)
		}
	}

	result := doJSON(t, router, http.MethodPost, base+"/finish", nil, http.StatusOK)
	if result["score"].(float64) != 100 {
		t.Fatalf("score = %v, want 100", result["score"])
	}
	if result["correct_count"].(float64) != 3 {
		t.Fatalf("correct_count = %v", result["correct_count"])
	}

	stats := doJSON(t, router, http.MethodGet, "/progress/stats", nil, http.StatusOK)
	if stats["questions_answered"].(float64) != 3 {
		t.Fatalf("questions_answered = %v, want 3", stats["questions_answered"])
	}

	history := httptest.NewRecorder()
	router.ServeHTTP(history, httptest.NewRequest(http.MethodGet, "/progress/history", nil))
	var entries []map[string]interface{}
	if err := json.Unmarshal(history.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 || entries[0]["mode"] != "quick_quiz" {
		t.Fatalf("history = %v", entries)
	}
}

func TestPracticeModeRevealsAnswers(t *testing.T) {
	router := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "practice", "category": string(models.CategoryLights)}, http.StatusCreated)

	q, ok := created["current_question"].(map[string]interface{})
	if !ok {
		t.Fatalf("no current question in %v", created)
	}
	if _, revealed := q["correct_option"]; !revealed {
		t.Fatal("practice mode should expose the answer key for feedback")
	}
	if q["category"] != string(models.CategoryLights) {
		t.Fatalf("category filter ignored: %v", q["category"])
	}
}

func TestStartSessionEmptyPool(t *testing.T) {
	router := newTestRouter(t)

	// Nothing has been answered wrong yet, so review mode has no questions.
	doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "review"}, http.StatusNotFound)
}

func TestStartSessionUnknownMode(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "blitz"}, http.StatusBadRequest)
}

func TestSessionNotFound(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodGet, "/sessions/does-not-exist", nil, http.StatusNotFound)
}

func TestDiscardSession(t *testing.T) {
	router := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "quick_quiz", "count": 2}, http.StatusCreated)
	id := created["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("discard = %d, want 204", rec.Code)
	}

	doJSON(t, router, http.MethodGet, "/sessions/"+id, nil, http.StatusNotFound)

	// A discarded session leaves no history entry.
	stats := doJSON(t, router, http.MethodGet, "/progress/stats", nil, http.StatusOK)
	if stats["questions_answered"].(float64) != 0 {
		t.Fatalf("questions_answered = %v, want 0", stats["questions_answered"])
	}
}

func TestBookmarkEndpoints(t *testing.T) {
	router := newTestRouter(t)

	out := doJSON(t, router, http.MethodPost, "/progress/bookmarks/3", nil, http.StatusOK)
	if out["bookmarked"] != true {
		t.Fatalf("bookmark = %v", out)
	}

	out = doJSON(t, router, http.MethodPost, "/progress/bookmarks/3", nil, http.StatusOK)
	if out["bookmarked"] != false {
		t.Fatalf("second toggle = %v", out)
	}
}

func TestListQuestionsFilters(t *testing.T) {
	router := newTestRouter(t)

	all := doJSON(t, router, http.MethodGet, "/questions", nil, http.StatusOK)
	if all["count"].(float64) != 10 {
		t.Fatalf("count = %v, want 10", all["count"])
	}

	lights := doJSON(t, router, http.MethodGet, "/questions?category=Lights+%26+Shapes", nil, http.StatusOK)
	if lights["count"].(float64) != 5 {
		t.Fatalf("filtered count = %v, want 5", lights["count"])
	}

	question := doJSON(t, router, http.MethodGet, "/questions/4", nil, http.StatusOK)
	if question["id"].(float64) != 4 {
		t.Fatalf("id = %v", question["id"])
	}

	doJSON(t, router, http.MethodGet, "/questions/999", nil, http.StatusNotFound)
}

func TestJumpAndNavigation(t *testing.T) {
	router := newTestRouter(t)

	created := doJSON(t, router, http.MethodPost, "/sessions",
		map[string]interface{}{"mode": "quick_quiz", "count": 5}, http.StatusCreated)
	base := "/sessions/" + created["id"].(string)

	state := doJSON(t, router, http.MethodPost, base+"/jump", map[string]int{"index": 99}, http.StatusOK)
	if state["current_index"].(float64) != 4 {
		t.Fatalf("jump past end: current_index = %v, want 4", state["current_index"])
	}

	state = doJSON(t, router, http.MethodPost, base+"/previous", nil, http.StatusOK)
	if state["current_index"].(float64) != 3 {
		t.Fatalf("previous: current_index = %v, want 3", state["current_index"])
	}
}
