// Package persist provides snapshot persistence for the memory collection.
//
// The store writes the whole collection after every mutating operation, so
// an Adapter only needs two bulk operations. Two backends are provided:
// a JSON file (the default single-file store) and SQLite.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lazypower/engram/internal/model"
)

// Adapter loads and stores the full record collection as a snapshot.
type Adapter interface {
	// LoadAll returns every persisted record. A missing or empty backing
	// store yields an empty collection, not an error.
	LoadAll() ([]*model.Record, error)

	// SaveAll replaces the persisted collection with records.
	SaveAll(records []*model.Record) error

	Close() error
}

// DefaultPath returns the default store path: ~/.engram/memories.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".engram", "memories.json"), nil
}

// Open creates an Adapter for the given backend ("json" or "sqlite").
func Open(backend, path string) (Adapter, error) {
	switch backend {
	case "", "json":
		return OpenJSONFile(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
