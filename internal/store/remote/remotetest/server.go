// Package remotetest runs an in-memory todo service behind httptest
// so client, cache, CLI and TUI tests can exercise real HTTP.
//
// The service mirrors the reference backend: ids start at 1, the
// server stamps createdAt/updatedAt, search is a case-insensitive
// title match and toggle flips completed.
//
// [Server.FailNext] injects a status code for the next matching
// request; [Server.Requests] records every request for wire
// assertions.
package remotetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

// Request is one recorded request.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// Server is a fake todo service.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	todos    map[int64]model.Todo
	nextID   int64
	requests []Request
	failures map[string]int
	now      func() time.Time
}

// NewServer starts a fake service seeded with todos (ids are assigned
// when zero) and closes it when the test ends.
func NewServer(t testing.TB, seed ...model.Todo) *Server {
	t.Helper()
	s := &Server{
		todos:    make(map[int64]model.Todo),
		nextID:   1,
		failures: make(map[string]int),
		now:      func() time.Time { return time.Date(2025, 9, 14, 10, 30, 0, 0, time.UTC) },
	}
	for _, todo := range seed {
		s.put(todo)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/todos", s.handleList)
	mux.HandleFunc("POST /api/todos", s.handleCreate)
	mux.HandleFunc("GET /api/todos/status", s.handleStatus)
	mux.HandleFunc("GET /api/todos/search", s.handleSearch)
	mux.HandleFunc("GET /api/todos/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/todos/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDelete)
	mux.HandleFunc("PATCH /api/todos/{id}/toggle", s.handleToggle)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// FailNext makes the next request with method (any method when empty)
// answer with status instead of being served.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Todos returns the stored todos ordered by id.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Server) put(todo model.Todo) model.Todo {
	if todo.ID == 0 {
		todo.ID = s.nextID
	}
	if todo.ID >= s.nextID {
		s.nextID = todo.ID + 1
	}
	s.todos[todo.ID] = todo
	return todo
}

func (s *Server) sortedLocked() []model.Todo {
	out := make([]model.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		out = append(out, todo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Body:     string(body),
		})
		status, ok := s.failures[r.Method]
		if ok {
			delete(s.failures, r.Method)
		} else if status, ok = s.failures[""]; ok {
			delete(s.failures, "")
		}
		s.mu.Unlock()

		if ok {
			http.Error(w, fmt.Sprintf(`{"error":"injected %d"}`, status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.sortedLocked())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	completed, err := strconv.ParseBool(r.URL.Query().Get("completed"))
	if err != nil {
		http.Error(w, "bad completed", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Todo{}
	for _, todo := range s.sortedLocked() {
		if todo.Completed == completed {
			out = append(out, todo)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	title := strings.ToLower(r.URL.Query().Get("title"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Todo{}
	for _, todo := range s.sortedLocked() {
		if strings.Contains(strings.ToLower(todo.Title), title) {
			out = append(out, todo)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, found := s.todos[id]
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var todo model.Todo
	if err := json.NewDecoder(r.Body).Decode(&todo); err != nil || strings.TrimSpace(todo.Title) == "" {
		http.Error(w, "invalid todo", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	todo.ID = 0
	stamp := s.stamp()
	todo.CreatedAt, todo.UpdatedAt = stamp, stamp
	writeJSON(w, http.StatusCreated, s.put(todo))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var todo model.Todo
	if err := json.NewDecoder(r.Body).Decode(&todo); err != nil || strings.TrimSpace(todo.Title) == "" {
		http.Error(w, "invalid todo", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, found := s.todos[id]
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	todo.ID = id
	todo.CreatedAt = existing.CreatedAt
	todo.UpdatedAt = s.stamp()
	writeJSON(w, http.StatusOK, s.put(todo))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.todos[id]; !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(s.todos, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, found := s.todos[id]
	if !found {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = s.stamp()
	writeJSON(w, http.StatusOK, s.put(todo))
}

func (s *Server) stamp() *model.Time {
	return model.NewTime(s.now())
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
