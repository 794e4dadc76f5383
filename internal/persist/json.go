package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lazypower/engram/internal/model"
)

// JSONFile persists the collection as a single JSON document.
// Writes go to a temp file in the same directory followed by a rename, so
// a crash mid-write never leaves a truncated store behind.
type JSONFile struct {
	Path string
}

type jsonSnapshot struct {
	Records []*model.Record `json:"memories"`
}

// OpenJSONFile creates the parent directory if needed and returns a
// JSONFile adapter for path.
func OpenJSONFile(path string) (*JSONFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &JSONFile{Path: path}, nil
}

// LoadAll reads the snapshot file. A missing file is an empty collection.
func (f *JSONFile) LoadAll() ([]*model.Record, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var snap jsonSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	return snap.Records, nil
}

// SaveAll writes the full collection atomically.
func (f *JSONFile) SaveAll(records []*model.Record) error {
	if records == nil {
		records = []*model.Record{}
	}
	data, err := json.MarshalIndent(jsonSnapshot{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (f *JSONFile) Close() error { return nil }
