package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/stockkeeper/internal/models"
	"github.com/iudanet/stockkeeper/internal/server/storage"
	"github.com/iudanet/stockkeeper/internal/validation"
	"github.com/iudanet/stockkeeper/pkg/api"
)

const maxBodySize = 1 << 20

// Broadcaster рассылает созданные позиции подписчикам /ws
type Broadcaster interface {
	Broadcast(item api.Item)
}

// ItemsHandler handles inventory item requests
type ItemsHandler struct {
	logger  *slog.Logger
	storage storage.ItemStorage
	hub     Broadcaster
}

// NewItemsHandler creates a new items handler. hub может быть nil.
func NewItemsHandler(logger *slog.Logger, itemStorage storage.ItemStorage, hub Broadcaster) *ItemsHandler {
	return &ItemsHandler{
		logger:  logger,
		storage: itemStorage,
		hub:     hub,
	}
}

// Register регистрирует маршруты позиций в mux
func (h *ItemsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /items", h.List)
	mux.HandleFunc("GET /all", h.List)
	mux.HandleFunc("GET /item/{id}", h.Get)
	mux.HandleFunc("POST /item", h.Create)
	mux.HandleFunc("PUT /item/{id}", h.Update)
	mux.HandleFunc("DELETE /item/{id}", h.Delete)
	mux.HandleFunc("GET /categories", h.Categories)
	mux.HandleFunc("GET /byCategory", h.ByCategory)
	mux.HandleFunc("GET /supplier-items", h.BySupplier)
}

// List обрабатывает GET /items и GET /all
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.storage.ListItems(r.Context())
	if err != nil {
		h.internalError(w, "list items", err)
		return
	}
	h.sendJSON(w, items, http.StatusOK)
}

// Get обрабатывает GET /item/{id}
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	item, err := h.storage.GetItem(r.Context(), id)
	if err != nil {
		h.storageError(w, "get item", err)
		return
	}
	h.sendJSON(w, item, http.StatusOK)
}

// Create обрабатывает POST /item. Созданная позиция рассылается по /ws.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	item, err := h.storage.CreateItem(r.Context(), payload)
	if err != nil {
		h.internalError(w, "create item", err)
		return
	}

	h.logger.Info("Item created", "id", item.ID, "name", item.Name, "category", item.Category)
	if h.hub != nil {
		h.hub.Broadcast(item)
	}

	h.sendJSON(w, item, http.StatusCreated)
}

// Update обрабатывает PUT /item/{id}
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	item, err := h.storage.UpdateItem(r.Context(), id, payload)
	if err != nil {
		h.storageError(w, "update item", err)
		return
	}

	h.logger.Info("Item updated", "id", item.ID)
	h.sendJSON(w, item, http.StatusOK)
}

// Delete обрабатывает DELETE /item/{id}
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteItem(r.Context(), id); err != nil {
		h.storageError(w, "delete item", err)
		return
	}

	h.logger.Info("Item deleted", "id", id)
	h.sendJSON(w, api.MessageResponse{Message: "Item deleted"}, http.StatusOK)
}

// Categories обрабатывает GET /categories
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.storage.Categories(r.Context())
	if err != nil {
		h.internalError(w, "list categories", err)
		return
	}
	h.sendJSON(w, categories, http.StatusOK)
}

// ByCategory обрабатывает GET /byCategory?category=
func (h *ItemsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		h.sendError(w, "category is required", http.StatusBadRequest)
		return
	}

	items, err := h.storage.ListByCategory(r.Context(), category)
	if err != nil {
		h.internalError(w, "list by category", err)
		return
	}
	h.sendJSON(w, items, http.StatusOK)
}

// BySupplier обрабатывает GET /supplier-items?supplier=
func (h *ItemsHandler) BySupplier(w http.ResponseWriter, r *http.Request) {
	supplier := strings.TrimSpace(r.URL.Query().Get("supplier"))
	if supplier == "" {
		h.sendError(w, "supplier is required", http.StatusBadRequest)
		return
	}

	items, err := h.storage.ListBySupplier(r.Context(), supplier)
	if err != nil {
		h.internalError(w, "list by supplier", err)
		return
	}
	h.sendJSON(w, items, http.StatusOK)
}

func (h *ItemsHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.sendError(w, "invalid item id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodePayload читает тело запроса и проверяет позицию теми же правилами,
// что и клиент
func (h *ItemsHandler) decodePayload(w http.ResponseWriter, r *http.Request) (api.ItemPayload, bool) {
	var req api.ItemPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		h.logger.Debug("Failed to decode item", "error", err)
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return api.ItemPayload{}, false
	}

	p := models.Payload{
		Name:     strings.TrimSpace(req.Name),
		Status:   strings.ToLower(strings.TrimSpace(req.Status)),
		Category: strings.TrimSpace(req.Category),
		Supplier: strings.TrimSpace(req.Supplier),
		Weight:   req.Weight,
		Quantity: req.Quantity,
	}
	if err := validation.ValidatePayload(p); err != nil {
		msg := err.Error()
		if errors.Is(err, validation.ErrMissingFields) {
			msg = "Please fill in all details"
		}
		h.sendError(w, msg, http.StatusBadRequest)
		return api.ItemPayload{}, false
	}

	return api.ItemPayload{
		Name:     p.Name,
		Status:   p.Status,
		Category: p.Category,
		Supplier: p.Supplier,
		Weight:   p.Weight,
		Quantity: p.Quantity,
	}, true
}

func (h *ItemsHandler) storageError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrItemNotFound) {
		h.sendError(w, "item not found", http.StatusNotFound)
		return
	}
	h.internalError(w, op, err)
}

func (h *ItemsHandler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Storage error", "op", op, "error", err)
	h.sendError(w, fmt.Sprintf("failed to %s", op), http.StatusInternalServerError)
}

func (h *ItemsHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	writeJSON(h.logger, w, data, statusCode)
}

func (h *ItemsHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(h.logger, w, api.ErrorResponse{Error: message}, statusCode)
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
