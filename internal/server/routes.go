package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/engram/internal/memory"
	"github.com/lazypower/engram/internal/model"
)

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content    string            `json:"content"`
		Metadata   map[string]string `json:"metadata"`
		Tags       []string          `json:"tags"`
		Importance float64           `json:"importance"`
		Category   string            `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	rec, err := s.store.Save(r.Context(), memory.SaveParams{
		Content:    req.Content,
		Metadata:   req.Metadata,
		Tags:       req.Tags,
		Importance: req.Importance,
		Category:   model.Category(req.Category),
	})
	if err != nil {
		var dup *memory.DuplicateContentError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":       "duplicate content",
				"existing_id": dup.ExistingID,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string  `json:"query"`
		Limit     int     `json:"limit"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query required")
		return
	}

	results, err := s.store.Search(r.Context(), req.Query, req.Limit, req.Threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []memory.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Content    *string            `json:"content"`
		Metadata   *map[string]string `json:"metadata"`
		Tags       *[]string          `json:"tags"`
		Importance *float64           `json:"importance"`
		Category   *string            `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	params := memory.UpdateParams{
		Content:    req.Content,
		Metadata:   req.Metadata,
		Tags:       req.Tags,
		Importance: req.Importance,
	}
	if req.Category != nil {
		cat := model.Category(*req.Category)
		params.Category = &cat
	}

	rec, err := s.store.Update(r.Context(), id, params)
	if err != nil {
		var dup *memory.DuplicateContentError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":       "duplicate content",
				"existing_id": dup.ExistingID,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "memory not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := s.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": removed})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	q := r.URL.Query()
	var records []*model.Record
	switch {
	case q.Get("category") != "":
		records = s.store.FindByCategory(model.Category(q.Get("category")))
	case q.Get("tag") != "":
		records = s.store.FindByAnyTag(q["tag"])
	case q.Get("from") != "" || q.Get("to") != "":
		from, to, err := parseRange(q.Get("from"), q.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = s.store.FindByCreatedBetween(from, to)
	default:
		records = s.store.List(limit, offset)
	}

	if records == nil {
		records = []*model.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"memories": records,
		"count":    len(records),
	})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now()
	if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return start, end, errors.New("from must be RFC3339")
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return start, end, errors.New("to must be RFC3339")
		}
		end = t
	}
	return start, end, nil
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
