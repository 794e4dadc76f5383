// Package memory implements the record lifecycle engine: content-addressed
// dedup, lazy half-life decay, access reinforcement, and brute-force cosine
// ranking over the in-memory vector set.
//
// Read paths write: Get and Search run the maintenance pass on every record
// they return and persist the result. List and the structured finders do
// not count as access and never mutate.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lazypower/engram/internal/embedding"
	"github.com/lazypower/engram/internal/model"
	"github.com/lazypower/engram/internal/persist"
)

// Notifier is told the record count after each successful save so an
// external backup policy can decide whether to snapshot. The store never
// depends on the notifier succeeding.
type Notifier interface {
	AfterSave(count int)
}

// Store owns the durable collection of memory records. Single-writer:
// one mutex serializes every operation, including the embedder call on the
// save/update path, so the dedup-check-then-insert sequence stays atomic.
type Store struct {
	mu       sync.Mutex
	embedder embedding.Embedder
	adapter  persist.Adapter
	policy   *Policy
	notifier Notifier
	now      func() time.Time

	records map[string]*model.Record // id -> record
	byHash  map[string]string        // content hash -> id
	order   []string                 // ids in insertion order
}

// New loads the persisted collection and returns a ready Store.
func New(adapter persist.Adapter, embedder embedding.Embedder, policy *Policy) (*Store, error) {
	s := &Store{
		embedder: embedder,
		adapter:  adapter,
		policy:   policy,
		now:      time.Now,
		records:  make(map[string]*model.Record),
		byHash:   make(map[string]string),
	}

	loaded, err := adapter.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	for _, r := range loaded {
		s.records[r.ID] = r
		s.byHash[r.ContentHash] = r.ID
		s.order = append(s.order, r.ID)
	}
	return s, nil
}

// SetNotifier configures the backup notifier.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// SetClock overrides the time source. Tests use this to simulate idle time.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SaveParams holds parameters for storing a new memory.
type SaveParams struct {
	Content  string
	Metadata map[string]string
	Tags     []string
	// Importance in [1,10]; zero means the default of 5.
	Importance float64
	Category   model.Category
}

// Save stores a new memory. Duplicate content (by hash) fails with
// *DuplicateContentError before any embedder call.
func (s *Store) Save(ctx context.Context, p SaveParams) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	importance := p.Importance
	if importance == 0 {
		importance = 5
	}
	importance = model.ClampImportance(importance)

	hash := model.HashContent(p.Content)
	if existing, ok := s.byHash[hash]; ok {
		return nil, &DuplicateContentError{ExistingID: existing}
	}

	vec, err := s.embedder.Embed(ctx, p.Content)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	now := s.now()
	r := &model.Record{
		ID:             uuid.NewString(),
		Content:        p.Content,
		ContentHash:    hash,
		Metadata:       p.Metadata,
		Embedding:      vec,
		Tags:           p.Tags,
		Importance:     importance,
		Category:       model.NormalizeCategory(p.Category),
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
	}

	s.records[r.ID] = r
	s.byHash[hash] = r.ID
	s.order = append(s.order, r.ID)

	if err := s.snapshot(); err != nil {
		delete(s.records, r.ID)
		delete(s.byHash, hash)
		s.order = s.order[:len(s.order)-1]
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.AfterSave(len(s.records))
	}
	return r.Clone(), nil
}

// Get returns the record by id, or nil if not found. A hit counts as
// access: the maintenance pass runs and its result is persisted.
func (s *Store) Get(ctx context.Context, id string) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}

	if s.maintain(r) {
		if err := s.snapshot(); err != nil {
			return nil, err
		}
	}
	return r.Clone(), nil
}

// SearchResult is a ranked record with its similarity score.
type SearchResult struct {
	Record *model.Record `json:"record"`
	Score  float64       `json:"score"`
}

// Search embeds the query once and ranks every stored record by cosine
// similarity. Records at or above threshold count as accessed: the
// maintenance pass runs on each before it is returned. Results are sorted
// by score descending, ties keeping insertion order, truncated to limit
// (default 10). A dimension mismatch aborts the whole ranking.
func (s *Store) Search(ctx context.Context, query string, limit int, threshold float64) ([]SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var results []SearchResult
	for _, id := range s.order {
		r := s.records[id]
		sim, err := CosineSimilarity(queryVec, r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score record %s: %w", r.ID, err)
		}
		if sim < threshold {
			continue
		}
		results = append(results, SearchResult{Record: r, Score: sim})
	}

	changed := false
	for i := range results {
		if s.maintain(results[i].Record) {
			changed = true
		}
	}
	if changed {
		if err := s.snapshot(); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		results[i].Record = results[i].Record.Clone()
	}
	return results, nil
}

// UpdateParams holds a partial update. Nil fields keep the stored value.
type UpdateParams struct {
	Content    *string
	Metadata   *map[string]string
	Tags       *[]string
	Importance *float64
	Category   *model.Category
}

// Update applies a partial update. A changed content is rehashed, checked
// for collisions against every other record, and re-embedded. Returns nil
// if the id does not exist. An update counts as access.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}

	if p.Content != nil && *p.Content != r.Content {
		hash := model.HashContent(*p.Content)
		if existing, ok := s.byHash[hash]; ok && existing != id {
			return nil, &DuplicateContentError{ExistingID: existing}
		}
		vec, err := s.embedder.Embed(ctx, *p.Content)
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		delete(s.byHash, r.ContentHash)
		r.Content = *p.Content
		r.ContentHash = hash
		r.Embedding = vec
		s.byHash[hash] = id
	}

	if p.Metadata != nil {
		r.Metadata = *p.Metadata
	}
	if p.Tags != nil {
		r.Tags = *p.Tags
	}
	if p.Importance != nil {
		r.Importance = model.ClampImportance(*p.Importance)
	}
	if p.Category != nil {
		r.Category = model.NormalizeCategory(*p.Category)
	}

	now := s.now()
	r.UpdatedAt = now
	r.LastAccessedAt = now

	if err := s.snapshot(); err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// Delete removes the record by id. Returns true if a record was removed;
// a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, nil
	}

	delete(s.records, id)
	delete(s.byHash, r.ContentHash)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if err := s.snapshot(); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAll removes every record and returns the prior count.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	s.records = make(map[string]*model.Record)
	s.byHash = make(map[string]string)
	s.order = nil

	if err := s.snapshot(); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns records ordered by creation time, most recent first.
// Listing is not access: no maintenance pass runs.
func (s *Store) List(limit, offset int) []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sorted(func(a, b *model.Record) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// FindByCategory returns records in the category, ordered by importance
// descending then creation time descending. Structural filtering, not
// semantic recall: no maintenance pass.
func (s *Store) FindByCategory(category model.Category) []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Record
	for _, id := range s.order {
		if s.records[id].Category == category {
			out = append(out, s.records[id].Clone())
		}
	}
	sortByImportance(out)
	return out
}

// FindByAnyTag returns records carrying at least one of the given tags,
// ordered by importance descending then creation time descending.
func (s *Store) FindByAnyTag(tags []string) []*model.Record {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Record
	for _, id := range s.order {
		r := s.records[id]
		for _, t := range r.Tags {
			if want[t] {
				out = append(out, r.Clone())
				break
			}
		}
	}
	sortByImportance(out)
	return out
}

// FindByCreatedBetween returns records created in [from, to], most recent
// first.
func (s *Store) FindByCreatedBetween(from, to time.Time) []*model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Record
	for _, id := range s.order {
		r := s.records[id]
		if r.CreatedAt.Before(from) || r.CreatedAt.After(to) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Count returns the current record count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close flushes nothing (every mutation already snapshotted) and closes
// the persistence adapter.
func (s *Store) Close() error {
	return s.adapter.Close()
}

// maintain runs the lazy decay + reinforcement + touch pass on a record
// about to be returned. Protected records are returned untouched. Reports
// whether the record changed and needs persisting. Decay applies strictly
// before reinforcement: a long-idle, just-recalled memory is marked down
// first, then credited on the decayed baseline.
func (s *Store) maintain(r *model.Record) bool {
	if s.policy.Protected(r.Tags) {
		return false
	}

	now := s.now()
	daysIdle := now.Sub(r.LastAccessedAt).Hours() / 24

	decayed := s.policy.Decay(r.Importance, daysIdle, r.Category)
	if s.policy.ShouldWriteDecay(r.Importance, decayed) {
		r.Importance = decayed
	}

	boosted, pending, commit := s.policy.Reinforce(r.Importance, r.PendingBoost)
	if commit {
		r.Importance = boosted
		r.PendingBoost = 0
	} else {
		r.PendingBoost = pending
	}

	r.LastAccessedAt = now
	return true
}

// snapshot persists the whole collection in insertion order.
func (s *Store) snapshot() error {
	all := make([]*model.Record, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id])
	}
	if err := s.adapter.SaveAll(all); err != nil {
		return fmt.Errorf("persist memories: %w", err)
	}
	return nil
}

// sorted returns clones of all records ordered by less.
func (s *Store) sorted(less func(a, b *model.Record) bool) []*model.Record {
	all := make([]*model.Record, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id].Clone())
	}
	sort.SliceStable(all, func(i, j int) bool {
		return less(all[i], all[j])
	})
	return all
}

func sortByImportance(records []*model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Importance != records[j].Importance {
			return records[i].Importance > records[j].Importance
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
