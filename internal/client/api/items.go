package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/stockkeeper/internal/models"
	"github.com/iudanet/stockkeeper/pkg/api"
)

// ListItems возвращает полный список позиций (GET /items)
func (c *Client) ListItems(ctx context.Context) ([]models.Record, error) {
	return c.listRecords(ctx, "/items", "list items")
}

// ListAllItems возвращает позиции для отчетов (GET /all)
func (c *Client) ListAllItems(ctx context.Context) ([]models.Record, error) {
	return c.listRecords(ctx, "/all", "list all items")
}

// GetItem возвращает позицию по id (GET /item/{id})
func (c *Client) GetItem(ctx context.Context, id models.RecordID) (models.Record, error) {
	remote, ok := id.Remote()
	if !ok {
		return models.Record{}, fmt.Errorf("get item: %w: %s is not a server id", models.ErrInvalidRecordID, id)
	}

	var item api.Item
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/item/%d", remote), nil, &item); err != nil {
		return models.Record{}, fmt.Errorf("get item request failed: %w", err)
	}
	return toRecord(item)
}

// CreateItem создает позицию (POST /item) и возвращает ее с id сервера
func (c *Client) CreateItem(ctx context.Context, p models.Payload) (models.Record, error) {
	var item api.Item
	if err := c.doRequest(ctx, http.MethodPost, "/item", toPayload(p), &item); err != nil {
		return models.Record{}, fmt.Errorf("create item request failed: %w", err)
	}
	return toRecord(item)
}

// UpdateItem обновляет позицию (PUT /item/{id})
func (c *Client) UpdateItem(ctx context.Context, id models.RecordID, p models.Payload) (models.Record, error) {
	remote, ok := id.Remote()
	if !ok {
		return models.Record{}, fmt.Errorf("update item: %w: %s is not a server id", models.ErrInvalidRecordID, id)
	}

	var item api.Item
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/item/%d", remote), toPayload(p), &item); err != nil {
		return models.Record{}, fmt.Errorf("update item request failed: %w", err)
	}
	return toRecord(item)
}

// DeleteItem удаляет позицию (DELETE /item/{id})
func (c *Client) DeleteItem(ctx context.Context, id models.RecordID) error {
	remote, ok := id.Remote()
	if !ok {
		return fmt.Errorf("delete item: %w: %s is not a server id", models.ErrInvalidRecordID, id)
	}

	if err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/item/%d", remote), nil, nil); err != nil {
		return fmt.Errorf("delete item request failed: %w", err)
	}
	return nil
}

// Categories возвращает список категорий (GET /categories)
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.doRequest(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("categories request failed: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// ItemsByCategory возвращает позиции категории (GET /byCategory?category=)
func (c *Client) ItemsByCategory(ctx context.Context, category string) ([]models.Record, error) {
	path := "/byCategory?" + url.Values{"category": {category}}.Encode()
	return c.listRecords(ctx, path, "items by category")
}

// SupplierItems возвращает позиции поставщика (GET /supplier-items?supplier=)
func (c *Client) SupplierItems(ctx context.Context, supplier string) ([]models.Record, error) {
	path := "/supplier-items?" + url.Values{"supplier": {supplier}}.Encode()
	return c.listRecords(ctx, path, "supplier items")
}

// Health проверяет доступность сервера (GET /health)
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

func (c *Client) listRecords(ctx context.Context, path, op string) ([]models.Record, error) {
	var items []api.Item
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}

	records := make([]models.Record, 0, len(items))
	for _, item := range items {
		rec, err := toRecord(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(item api.Item) (models.Record, error) {
	if item.ID <= 0 {
		return models.Record{}, fmt.Errorf("%w: item id %d", ErrInvalidResponse, item.ID)
	}
	return models.Record{
		ID: models.RemoteID(uint64(item.ID)),
		Payload: models.Payload{
			Name:     item.Name,
			Status:   item.Status,
			Category: item.Category,
			Supplier: item.Supplier,
			Weight:   item.Weight,
			Quantity: item.Quantity,
		},
	}, nil
}

func toPayload(p models.Payload) api.ItemPayload {
	return api.ItemPayload{
		Name:     p.Name,
		Status:   p.Status,
		Category: p.Category,
		Supplier: p.Supplier,
		Weight:   p.Weight,
		Quantity: p.Quantity,
	}
}
