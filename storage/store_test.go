package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/storage"
)

func TestFileStoreFirstRun(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	payload, version, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if payload != nil || version != 0 {
		t.Fatalf("first run: payload=%q version=%d, want nil and 0", payload, version)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Save([]byte(`{"questions_answered":3}`), storage.CurrentVersion); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	payload, version, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(payload) != `{"questions_answered":3}` {
		t.Fatalf("payload = %q", payload)
	}
	if version != storage.CurrentVersion {
		t.Fatalf("version = %d, want %d", version, storage.CurrentVersion)
	}
}

func TestSaveAndLoadProgress(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	original := models.NewUserProgress()
	original.QuestionsAnswered = 42
	original.CorrectAnswers = 30
	original.CategoryStats[models.CategoryLights] = models.Stat{Answered: 10, Correct: 7}
	original.RuleStats["Rule 34"] = models.Stat{Answered: 4, Correct: 1}
	original.Bookmarks = []int{5, 2, 9}
	original.IncorrectQuestionIDs[17] = true
	original.QuizHistory = append(original.QuizHistory, models.QuizHistoryEntry{
		Mode:           "exam",
		Score:          75,
		Elapsed:        12 * time.Minute,
		TotalQuestions: 20,
		CorrectCount:   15,
		QuestionIDs:    []int{1, 2, 3},
		Answers:        map[int]int{1: 0, 2: 3},
		CompletedAt:    time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC),
	})
	original.LastSessionDate = time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	original.StreakDays = 6
	original.TotalStudyTime = 3 * time.Hour

	if err := storage.SaveProgress(store, original); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}

	loaded, err := storage.LoadProgress(store)
	if err != nil {
		t.Fatalf("LoadProgress failed: %v", err)
	}

	if loaded.QuestionsAnswered != 42 || loaded.CorrectAnswers != 30 {
		t.Fatalf("counters = %d/%d", loaded.QuestionsAnswered, loaded.CorrectAnswers)
	}
	if got := loaded.CategoryStats[models.CategoryLights]; got != (models.Stat{Answered: 10, Correct: 7}) {
		t.Fatalf("category stats = %+v", got)
	}
	if got := loaded.RuleStats["Rule 34"]; got != (models.Stat{Answered: 4, Correct: 1}) {
		t.Fatalf("rule stats = %+v", got)
	}
	if len(loaded.Bookmarks) != 3 || loaded.Bookmarks[0] != 5 {
		t.Fatalf("bookmarks = %v", loaded.Bookmarks)
	}
	if !loaded.IncorrectQuestionIDs[17] {
		t.Fatal("incorrect set lost")
	}
	if len(loaded.QuizHistory) != 1 {
		t.Fatalf("history length = %d", len(loaded.QuizHistory))
	}
	entry := loaded.QuizHistory[0]
	if entry.Mode != "exam" || entry.Score != 75 || entry.Elapsed != 12*time.Minute {
		t.Fatalf("history entry = %+v", entry)
	}
	if entry.Answers[2] != 3 {
		t.Fatalf("history answers = %v", entry.Answers)
	}
	if loaded.StreakDays != 6 || loaded.TotalStudyTime != 3*time.Hour {
		t.Fatalf("streak/study = %d/%v", loaded.StreakDays, loaded.TotalStudyTime)
	}
	if !loaded.LastSessionDate.Equal(original.LastSessionDate) {
		t.Fatalf("last session date = %v", loaded.LastSessionDate)
	}
}

func TestLoadProgressCorruptPayloadResets(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Save([]byte("{not json"), storage.CurrentVersion); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.LoadProgress(store)
	if err != nil {
		t.Fatalf("LoadProgress should recover from corruption, got %v", err)
	}
	if loaded.QuestionsAnswered != 0 || len(loaded.QuizHistory) != 0 {
		t.Fatalf("expected a fresh aggregate, got %+v", loaded)
	}
	if loaded.CategoryStats == nil || loaded.IncorrectQuestionIDs == nil {
		t.Fatal("fresh aggregate must have allocated collections")
	}
}

func TestLoadProgressMigratesV1(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	v1 := `{"questions_answered":9,"correct_answers":4,"stats":{"Lights & Shapes":{"answered":9,"correct":4}}}`
	if err := store.Save([]byte(v1), 1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := storage.LoadProgress(store)
	if err != nil {
		t.Fatalf("LoadProgress failed: %v", err)
	}
	if loaded.QuestionsAnswered != 9 || loaded.CorrectAnswers != 4 {
		t.Fatalf("counters = %d/%d, want 9/4", loaded.QuestionsAnswered, loaded.CorrectAnswers)
	}
	if got := loaded.CategoryStats[models.CategoryLights]; got.Answered != 9 || got.Correct != 4 {
		t.Fatalf("migrated category stats = %+v", got)
	}
	// Fields added after v1 default to empty, not nil.
	if loaded.RuleStats == nil || loaded.IncorrectQuestionIDs == nil {
		t.Fatal("newer collections should be allocated after migration")
	}
}

func TestMigrateCurrentVersionIsNoop(t *testing.T) {
	payload := []byte(`{"questions_answered":1}`)
	out, err := storage.Migrate(payload, storage.CurrentVersion)
	if err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("payload changed: %q", out)
	}
}

func TestFileStoreSurvivesMissingVersionFile(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Save([]byte(`{}`), 2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, storage.ProgressKey+".version")); err != nil {
		t.Fatalf("remove version file: %v", err)
	}

	payload, version, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(payload) == 0 || version != 0 {
		t.Fatalf("payload=%q version=%d, want payload kept and version 0", payload, version)
	}
}

func TestNewBlobStoreBackends(t *testing.T) {
	dir := t.TempDir()

	if _, err := storage.NewBlobStore("bogus", dir); err == nil {
		t.Fatal("unknown backend should fail")
	}

	fileStore, err := storage.NewBlobStore("", dir)
	if err != nil {
		t.Fatalf("default backend failed: %v", err)
	}
	fileStore.Close()

	if _, ok := fileStore.(*storage.FileStore); !ok {
		t.Fatalf("default backend = %T, want *FileStore", fileStore)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := storage.NewBlobStore("sqlite", t.TempDir())
	if err != nil {
		t.Fatalf("sqlite backend failed: %v", err)
	}
	defer store.Close()

	if payload, version, err := store.Load(); err != nil || payload != nil || version != 0 {
		t.Fatalf("first run: payload=%q version=%d err=%v", payload, version, err)
	}

	if err := store.Save([]byte(`{"streak_days":2}`), storage.CurrentVersion); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Upsert overwrites.
	if err := store.Save([]byte(`{"streak_days":3}`), storage.CurrentVersion); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	payload, version, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(payload) != `{"streak_days":3}` || version != storage.CurrentVersion {
		t.Fatalf("payload=%q version=%d", payload, version)
	}
}
