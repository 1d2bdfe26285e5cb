package mockapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tiendasuplementacion/storefront/internal/domain"
)

// table is one in-memory collection: records by id plus insertion order,
// protected by the server mutex. withID stamps the server-assigned id
// onto a freshly created record.
type table[T domain.Entity] struct {
	srv    *Server
	withID func(T, int64) T
	order  []int64
	items  map[int64]T
}

func newTable[T domain.Entity](srv *Server, withID func(T, int64) T) *table[T] {
	return &table[T]{srv: srv, withID: withID, items: make(map[int64]T)}
}

func (t *table[T]) list() []T {
	t.srv.mu.Lock()
	defer t.srv.mu.Unlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}

func (t *table[T]) get(id int64) (T, bool) {
	t.srv.mu.Lock()
	defer t.srv.mu.Unlock()
	rec, ok := t.items[id]
	return rec, ok
}

func (t *table[T]) create(rec T) T {
	t.srv.mu.Lock()
	defer t.srv.mu.Unlock()
	t.srv.nextID++
	rec = t.withID(rec, t.srv.nextID)
	t.items[rec.EntityID()] = rec
	t.order = append(t.order, rec.EntityID())
	return rec
}

func (t *table[T]) update(id int64, rec T) (T, bool) {
	t.srv.mu.Lock()
	defer t.srv.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		var zero T
		return zero, false
	}
	rec = t.withID(rec, id)
	t.items[id] = rec
	return rec, true
}

func (t *table[T]) delete(id int64) bool {
	t.srv.mu.Lock()
	defer t.srv.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	delete(t.items, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// mountCRUD wires the standard /api/{resource}[/{id}] routes for a table.
func mountCRUD[T domain.Entity](r chi.Router, path string, t *table[T]) {
	r.Route(path, func(r chi.Router) {
		crudRoutes(r, t)
	})
}

// crudRoutes registers the CRUD handlers on an existing subtree, for
// resources that carry extra routes next to the standard ones.
func crudRoutes[T domain.Entity](r chi.Router, t *table[T]) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, t.list())
	})
	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var rec T
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
		respondJSON(w, http.StatusCreated, t.create(rec))
	})
	r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		rec, found := t.get(id)
		if !found {
			respondError(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		respondJSON(w, http.StatusOK, rec)
	})
	r.Put("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var rec T
		if err := json.NewDecoder(req.Body).Decode(&rec); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
		updated, found := t.update(id, rec)
		if !found {
			respondError(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		respondJSON(w, http.StatusOK, updated)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		if !t.delete(id) {
			respondError(w, http.StatusNotFound, "not_found", "record not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
