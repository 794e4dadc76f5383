package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lazypower/engram/internal/model"
)

func testRecord(id, content string) *model.Record {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Record{
		ID:             id,
		Content:        content,
		ContentHash:    model.HashContent(content),
		Metadata:       map[string]string{"origin": "test"},
		Embedding:      []float64{0.25, -0.5, 1},
		Tags:           []string{"t1", "t2"},
		Importance:     5,
		Category:       model.CategoryFact,
		PendingBoost:   0.2,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
	}
}

func TestJSONFileMissingIsEmpty(t *testing.T) {
	f, err := OpenJSONFile(filepath.Join(t.TempDir(), "memories.json"))
	if err != nil {
		t.Fatalf("OpenJSONFile: %v", err)
	}

	records, err := f.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	f, err := OpenJSONFile(filepath.Join(t.TempDir(), "memories.json"))
	if err != nil {
		t.Fatalf("OpenJSONFile: %v", err)
	}

	in := []*model.Record{testRecord("a", "first"), testRecord("b", "second")}
	if err := f.SaveAll(in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, err := f.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("records = %d, want 2", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("order = %s, %s; want a, b", out[0].ID, out[1].ID)
	}
	if out[0].Content != "first" || out[0].Metadata["origin"] != "test" {
		t.Error("fields not preserved")
	}
	if len(out[0].Embedding) != 3 || out[0].Embedding[2] != 1 {
		t.Errorf("embedding = %v, want preserved", out[0].Embedding)
	}
	if !out[0].CreatedAt.Equal(testRecord("a", "first").CreatedAt) {
		t.Error("timestamps not preserved")
	}
}

func TestJSONFileSnapshotReplaces(t *testing.T) {
	f, err := OpenJSONFile(filepath.Join(t.TempDir(), "memories.json"))
	if err != nil {
		t.Fatalf("OpenJSONFile: %v", err)
	}

	if err := f.SaveAll([]*model.Record{testRecord("a", "first")}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := f.SaveAll([]*model.Record{testRecord("b", "second")}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, err := f.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("snapshot did not replace: %v", out)
	}
}

func TestJSONFileNoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenJSONFile(filepath.Join(dir, "memories.json"))
	if err != nil {
		t.Fatalf("OpenJSONFile: %v", err)
	}
	if err := f.SaveAll([]*model.Record{testRecord("a", "first")}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir entries = %d, want just the store file", len(entries))
	}
}
