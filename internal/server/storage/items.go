package storage

import (
	"context"

	"github.com/iudanet/stockkeeper/pkg/api"
)

// ItemStorage defines interface for inventory items persistence
type ItemStorage interface {
	// CreateItem stores a new item and returns it with the assigned id
	CreateItem(ctx context.Context, p api.ItemPayload) (api.Item, error)

	// GetItem retrieves a single item by id
	// Returns ErrItemNotFound if item doesn't exist
	GetItem(ctx context.Context, id int64) (api.Item, error)

	// UpdateItem replaces all fields of an item
	// Returns ErrItemNotFound if item doesn't exist
	UpdateItem(ctx context.Context, id int64, p api.ItemPayload) (api.Item, error)

	// DeleteItem removes an item
	// Returns ErrItemNotFound if item doesn't exist
	DeleteItem(ctx context.Context, id int64) error

	// ListItems returns all items in creation order
	// Returns empty slice if no items found
	ListItems(ctx context.Context) ([]api.Item, error)

	// ListByCategory returns items of the category in creation order
	ListByCategory(ctx context.Context, category string) ([]api.Item, error)

	// ListBySupplier returns items of the supplier in creation order
	ListBySupplier(ctx context.Context, supplier string) ([]api.Item, error)

	// Categories returns distinct categories in alphabetical order
	Categories(ctx context.Context) ([]string, error)
}
