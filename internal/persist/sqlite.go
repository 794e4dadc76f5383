package persist

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lazypower/engram/internal/model"
)

// SQLite persists the collection in a single SQLite table. The contract is
// still whole-collection snapshot: SaveAll replaces the table contents in
// one transaction.
type SQLite struct {
	db   *sql.DB
	Path string
}

// OpenSQLite opens (or creates) the database at path, configures pragmas,
// and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLite{db: sqlDB, Path: path}
	if err := s.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenSQLiteMemory opens an in-memory database for testing.
func OpenSQLiteMemory() (*SQLite, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}

	s := &SQLite{db: sqlDB, Path: ":memory:"}
	if err := s.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			id               TEXT PRIMARY KEY,
			content          TEXT NOT NULL,
			content_hash     TEXT NOT NULL UNIQUE,
			metadata         TEXT,
			embedding        BLOB,
			tags             TEXT,
			importance       REAL NOT NULL,
			category         TEXT NOT NULL,
			pending_boost    REAL NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL,
			updated_at       INTEGER NOT NULL,
			last_accessed_at INTEGER NOT NULL,
			seq              INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(category);
		CREATE INDEX IF NOT EXISTS idx_memories_created  ON memories(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("create memories table: %w", err)
	}
	return nil
}

// LoadAll returns every persisted record in insertion order.
func (s *SQLite) LoadAll() ([]*model.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, content, content_hash, metadata, embedding, tags,
			importance, category, pending_boost, created_at, updated_at, last_accessed_at
		FROM memories ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	defer rows.Close()

	var records []*model.Record
	for rows.Next() {
		var r model.Record
		var metadata, tags sql.NullString
		var blob []byte
		var created, updated, accessed int64
		if err := rows.Scan(&r.ID, &r.Content, &r.ContentHash, &metadata, &blob, &tags,
			&r.Importance, &r.Category, &r.PendingBoost, &created, &updated, &accessed); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &r.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", r.ID, err)
			}
		}
		if tags.Valid && tags.String != "" {
			if err := json.Unmarshal([]byte(tags.String), &r.Tags); err != nil {
				return nil, fmt.Errorf("decode tags for %s: %w", r.ID, err)
			}
		}
		r.Embedding = decodeEmbedding(blob)
		r.CreatedAt = time.UnixMilli(created)
		r.UpdatedAt = time.UnixMilli(updated)
		r.LastAccessedAt = time.UnixMilli(accessed)
		records = append(records, &r)
	}
	return records, rows.Err()
}

// SaveAll replaces the table contents with records in one transaction.
func (s *SQLite) SaveAll(records []*model.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM memories"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear memories: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO memories (id, content, content_hash, metadata, embedding, tags,
			importance, category, pending_boost, created_at, updated_at, last_accessed_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		metadata, err := encodeJSON(r.Metadata)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		tags, err := encodeJSON(r.Tags)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode tags for %s: %w", r.ID, err)
		}

		if _, err := stmt.Exec(r.ID, r.Content, r.ContentHash, metadata, encodeEmbedding(r.Embedding), tags,
			r.Importance, string(r.Category), r.PendingBoost,
			r.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli(), r.LastAccessedAt.UnixMilli(), i); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert memory %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) Close() error { return s.db.Close() }

func encodeJSON(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case map[string]string:
		if len(t) == 0 {
			return sql.NullString{}, nil
		}
	case []string:
		if len(t) == 0 {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// encodeEmbedding converts a []float64 to a binary BLOB (8 bytes per float64).
func encodeEmbedding(vec []float64) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeEmbedding converts a binary BLOB back to []float64.
func decodeEmbedding(buf []byte) []float64 {
	if len(buf) == 0 {
		return nil
	}
	n := len(buf) / 8
	vec := make([]float64, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return vec
}
