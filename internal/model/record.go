// Package model defines the core memory record types.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Category classifies a memory and selects its decay behavior.
type Category string

const (
	CategoryGeneral      Category = "general"
	CategoryFact         Category = "fact"
	CategoryPreference   Category = "preference"
	CategoryConversation Category = "conversation"
	CategoryTask         Category = "task"
	CategoryEphemeral    Category = "ephemeral"
)

// DefaultCategory is the catch-all used when no category is supplied
// or the supplied value is unknown.
const DefaultCategory = CategoryGeneral

// ValidCategories enumerates the allowed category values.
var ValidCategories = map[Category]bool{
	CategoryGeneral:      true,
	CategoryFact:         true,
	CategoryPreference:   true,
	CategoryConversation: true,
	CategoryTask:         true,
	CategoryEphemeral:    true,
}

// Importance bounds. Every record's importance lives in [MinImportance, MaxImportance]
// regardless of category floors.
const (
	MinImportance = 1.0
	MaxImportance = 10.0
)

// Record is a single stored memory.
type Record struct {
	ID             string            `json:"id"`
	Content        string            `json:"content"`
	ContentHash    string            `json:"content_hash"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Embedding      []float64         `json:"embedding,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Importance     float64           `json:"importance"`
	Category       Category          `json:"category"`
	PendingBoost   float64           `json:"pending_boost"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}

// Clone returns a deep copy. The store hands out clones so no caller
// holds a writable reference into store-owned state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Metadata != nil {
		c.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	if r.Embedding != nil {
		c.Embedding = append([]float64(nil), r.Embedding...)
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return &c
}

// HashContent returns the sha256 hex digest used as the dedup key.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ClampImportance forces x into [MinImportance, MaxImportance].
func ClampImportance(x float64) float64 {
	if x < MinImportance {
		return MinImportance
	}
	if x > MaxImportance {
		return MaxImportance
	}
	return x
}

// NormalizeCategory maps unknown or empty categories to the default.
func NormalizeCategory(c Category) Category {
	if ValidCategories[c] {
		return c
	}
	return DefaultCategory
}
