// Package server exposes the memory store over a chi HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/engram/internal/memory"
)

// Server is the engram HTTP API server.
type Server struct {
	store   *memory.Store
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given store and version string.
func New(store *memory.Store, version string) *Server {
	s := &Server{
		store:   store,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/memories", s.handleSave)
		r.Get("/memories", s.handleList)
		r.Delete("/memories", s.handleDeleteAll)
		r.Get("/memories/{id}", s.handleGet)
		r.Patch("/memories/{id}", s.handleUpdate)
		r.Delete("/memories/{id}", s.handleDelete)

		r.Post("/search", s.handleSearch)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"count":   s.store.Count(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
