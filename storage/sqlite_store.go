package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/navprep/engine/utils"
)

// SQLiteStore keeps the progress blob in a single-row key/value table inside
// an embedded SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	utils.LogStore("SQLite progress store ready at %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() ([]byte, int, error) {
	var row struct {
		Payload []byte `db:"payload"`
		Version int    `db:"version"`
	}
	err := s.db.Get(&row, `SELECT payload, version FROM blobs WHERE key = ?`, ProgressKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load progress blob: %w", err)
	}
	return row.Payload, row.Version, nil
}

func (s *SQLiteStore) Save(payload []byte, version int) error {
	_, err := s.db.Exec(`
		INSERT INTO blobs (key, payload, version, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_at = CURRENT_TIMESTAMP
	`, ProgressKey, payload, version)
	if err != nil {
		return fmt.Errorf("failed to save progress blob: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
