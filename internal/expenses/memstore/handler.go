package memstore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Routes mounts GET, POST and DELETE /{id} on a chi router. Errors are
// plain text bodies.
func (s *Store) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleList)
	r.Post("/", s.handleCreate)
	r.Delete("/{id}", s.handleDelete)
	return r
}

func (s *Store) handleList(w http.ResponseWriter, r *http.Request) {
	items := s.List(r.Context())
	if items == nil {
		items = []Record{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Store) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		http.Error(w, "JSON body required", http.StatusBadRequest)
		return
	}
	rec, err := s.Add(r.Context(), Input{
		Amount:   body["amount"],
		Category: body["category"],
		Date:     body["date"],
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Store) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	if err := s.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
