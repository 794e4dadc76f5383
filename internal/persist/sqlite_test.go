package persist

import (
	"math"
	"testing"

	"github.com/lazypower/engram/internal/model"
)

func TestSQLiteEmptyLoad(t *testing.T) {
	s, err := OpenSQLiteMemory()
	if err != nil {
		t.Fatalf("OpenSQLiteMemory: %v", err)
	}
	defer s.Close()

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := OpenSQLiteMemory()
	if err != nil {
		t.Fatalf("OpenSQLiteMemory: %v", err)
	}
	defer s.Close()

	in := []*model.Record{testRecord("a", "first"), testRecord("b", "second")}
	if err := s.SaveAll(in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("records = %d, want 2", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("insertion order lost: %s, %s", out[0].ID, out[1].ID)
	}

	got := out[0]
	want := in[0]
	if got.Content != want.Content || got.ContentHash != want.ContentHash {
		t.Error("content not preserved")
	}
	if got.Category != want.Category || got.Importance != want.Importance {
		t.Error("category/importance not preserved")
	}
	if got.Metadata["origin"] != "test" {
		t.Error("metadata not preserved")
	}
	if len(got.Tags) != 2 || got.Tags[0] != "t1" {
		t.Errorf("tags = %v, want preserved", got.Tags)
	}
	if math.Abs(got.PendingBoost-want.PendingBoost) > 1e-12 {
		t.Error("pending boost not preserved")
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.LastAccessedAt.Equal(want.LastAccessedAt) {
		t.Error("timestamps not preserved")
	}
	if len(got.Embedding) != len(want.Embedding) {
		t.Fatalf("embedding dims = %d, want %d", len(got.Embedding), len(want.Embedding))
	}
	for i := range want.Embedding {
		if got.Embedding[i] != want.Embedding[i] {
			t.Errorf("embedding[%d] = %v, want exact %v", i, got.Embedding[i], want.Embedding[i])
		}
	}
}

func TestSQLiteSnapshotReplaces(t *testing.T) {
	s, err := OpenSQLiteMemory()
	if err != nil {
		t.Fatalf("OpenSQLiteMemory: %v", err)
	}
	defer s.Close()

	if err := s.SaveAll([]*model.Record{testRecord("a", "first")}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := s.SaveAll([]*model.Record{testRecord("b", "second")}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("snapshot did not replace table contents")
	}
}

func TestEmbeddingCodec(t *testing.T) {
	vecs := [][]float64{
		nil,
		{},
		{0},
		{1.5, -2.25, math.Pi, math.SmallestNonzeroFloat64},
	}

	for _, vec := range vecs {
		decoded := decodeEmbedding(encodeEmbedding(vec))
		if len(vec) == 0 {
			if decoded != nil {
				t.Errorf("empty vector decoded to %v", decoded)
			}
			continue
		}
		if len(decoded) != len(vec) {
			t.Fatalf("decoded dims = %d, want %d", len(decoded), len(vec))
		}
		for i := range vec {
			if decoded[i] != vec[i] {
				t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], vec[i])
			}
		}
	}
}
