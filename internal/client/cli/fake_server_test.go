package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/iudanet/stockkeeper/pkg/api"
)

// fakeServer хранит позиции в памяти и повторяет REST API сервера
type fakeServer struct {
	items  []api.Item
	nextID int64
	mu     sync.Mutex
}

func newFakeServer(t *testing.T, items ...api.Item) (*fakeServer, *httptest.Server) {
	t.Helper()

	f := &fakeServer{nextID: 1}
	for _, item := range items {
		f.items = append(f.items, item)
		if item.ID >= f.nextID {
			f.nextID = item.ID + 1
		}
	}

	ts := httptest.NewServer(f.routes())
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeServer) snapshot() []api.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Item(nil), f.items...)
}

func (f *fakeServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
	})
	mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.filter(func(api.Item) bool { return true }))
	})
	mux.HandleFunc("GET /all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.filter(func(api.Item) bool { return true }))
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		seen := map[string]bool{}
		categories := []string{}
		for _, item := range f.snapshot() {
			if !seen[item.Category] {
				seen[item.Category] = true
				categories = append(categories, item.Category)
			}
		}
		writeJSON(w, http.StatusOK, categories)
	})
	mux.HandleFunc("GET /byCategory", func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		writeJSON(w, http.StatusOK, f.filter(func(i api.Item) bool { return i.Category == category }))
	})
	mux.HandleFunc("GET /supplier-items", func(w http.ResponseWriter, r *http.Request) {
		supplier := r.URL.Query().Get("supplier")
		writeJSON(w, http.StatusOK, f.filter(func(i api.Item) bool { return i.Supplier == supplier }))
	})
	mux.HandleFunc("POST /item", func(w http.ResponseWriter, r *http.Request) {
		var p api.ItemPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid body"})
			return
		}
		f.mu.Lock()
		item := fromPayload(f.nextID, p)
		f.nextID++
		f.items = append(f.items, item)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, item)
	})
	mux.HandleFunc("GET /item/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		found := f.filter(func(i api.Item) bool { return i.ID == id })
		if len(found) == 0 {
			writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "item not found"})
			return
		}
		writeJSON(w, http.StatusOK, found[0])
	})
	mux.HandleFunc("PUT /item/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var p api.ItemPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid body"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i] = fromPayload(id, p)
				writeJSON(w, http.StatusOK, f.items[i])
				return
			}
		}
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "item not found"})
	})
	mux.HandleFunc("DELETE /item/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.items {
			if f.items[i].ID == id {
				f.items = append(f.items[:i], f.items[i+1:]...)
				writeJSON(w, http.StatusOK, api.MessageResponse{Message: "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "item not found"})
	})

	return mux
}

func (f *fakeServer) filter(keep func(api.Item) bool) []api.Item {
	result := []api.Item{}
	for _, item := range f.snapshot() {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}

func fromPayload(id int64, p api.ItemPayload) api.Item {
	return api.Item{
		ID:       id,
		Name:     p.Name,
		Status:   p.Status,
		Category: p.Category,
		Supplier: p.Supplier,
		Weight:   p.Weight,
		Quantity: p.Quantity,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
