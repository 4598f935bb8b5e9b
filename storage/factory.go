package storage

import (
	"fmt"
	"path/filepath"
)

// NewBlobStore selects a persistence backend. "file" is the default; "sqlite"
// keeps the blob in an embedded database under the same directory.
func NewBlobStore(backend, dir string) (BlobStore, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dir)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dir, "navprep.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
