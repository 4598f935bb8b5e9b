package storage

import (
	"encoding/json"
	"errors"

	"github.com/navprep/engine/models"
	"github.com/navprep/engine/utils"
)

// ProgressKey is the single key the progress blob is stored under.
const ProgressKey = "user_progress"

// ErrDecode marks a persisted payload that could not be deserialized.
// It is recovered locally by falling back to a fresh store and is never
// surfaced to the user.
var ErrDecode = errors.New("failed to decode persisted progress")

// BlobStore persists one versioned payload under ProgressKey. Load returns a
// nil payload and version 0 on first run.
type BlobStore interface {
	Load() (payload []byte, version int, err error)
	Save(payload []byte, version int) error
	Close() error
}

// LoadProgress reads, migrates and decodes the persisted aggregate. A missing
// payload (first run) or a corrupted one both yield a fresh empty aggregate;
// corruption is logged but deliberately not fatal, so app startup never
// aborts over bad saved data.
func LoadProgress(bs BlobStore) (*models.UserProgress, error) {
	payload, version, err := bs.Load()
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		utils.LogStore("No saved progress found, starting fresh")
		return models.NewUserProgress(), nil
	}

	if version > 0 && version < CurrentVersion {
		migrated, err := Migrate(payload, version)
		if err != nil {
			utils.LogError("Progress migration from v%d failed, resetting store: %v", version, err)
			return models.NewUserProgress(), nil
		}
		payload = migrated
		utils.LogStore("Migrated progress payload from schema v%d to v%d", version, CurrentVersion)
	}

	var progress models.UserProgress
	if err := json.Unmarshal(payload, &progress); err != nil {
		utils.LogError("%v, resetting store: %v", ErrDecode, err)
		return models.NewUserProgress(), nil
	}
	progress.Normalize()
	return &progress, nil
}

// SaveProgress serializes the aggregate and writes it at the current schema
// version.
func SaveProgress(bs BlobStore, progress *models.UserProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return bs.Save(payload, CurrentVersion)
}
