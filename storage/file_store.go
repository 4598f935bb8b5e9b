package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileStore keeps the progress blob in a JSON file next to a small version
// file. Writes go through a temp file and rename so a crash mid-save leaves
// the previous payload intact.
type FileStore struct {
	mu       sync.Mutex
	dataPath string
	verPath  string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{
		dataPath: filepath.Join(dir, ProgressKey+".json"),
		verPath:  filepath.Join(dir, ProgressKey+".version"),
	}, nil
}

func (f *FileStore) Load() ([]byte, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := os.ReadFile(f.dataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	version := 0
	if raw, err := os.ReadFile(f.verPath); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(string(raw))); err == nil {
			version = v
		}
	}
	return payload, version, nil
}

func (f *FileStore) Save(payload []byte, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := f.dataPath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.dataPath); err != nil {
		return err
	}
	return os.WriteFile(f.verPath, []byte(strconv.Itoa(version)), 0o644)
}

func (f *FileStore) Close() error {
	return nil
}
