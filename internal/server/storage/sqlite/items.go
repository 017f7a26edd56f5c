package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/stockkeeper/internal/server/storage"
	"github.com/iudanet/stockkeeper/pkg/api"
)

const itemColumns = `id, name, status, category, supplier, weight, quantity`

// CreateItem stores a new item and returns it with the assigned id
func (s *Storage) CreateItem(ctx context.Context, p api.ItemPayload) (api.Item, error) {
	now := time.Now().Unix()

	query := `
		INSERT INTO items (name, status, category, supplier, weight, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		p.Name, p.Status, p.Category, p.Supplier, p.Weight, p.Quantity, now, now)
	if err != nil {
		return api.Item{}, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return api.Item{}, fmt.Errorf("failed to get item id: %w", err)
	}

	return itemFromPayload(id, p), nil
}

// GetItem retrieves a single item by id
// Returns ErrItemNotFound if item doesn't exist
func (s *Storage) GetItem(ctx context.Context, id int64) (api.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	var item api.Item
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Status,
		&item.Category,
		&item.Supplier,
		&item.Weight,
		&item.Quantity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Item{}, storage.ErrItemNotFound
		}
		return api.Item{}, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// UpdateItem replaces all fields of an item
// Returns ErrItemNotFound if item doesn't exist
func (s *Storage) UpdateItem(ctx context.Context, id int64, p api.ItemPayload) (api.Item, error) {
	query := `
		UPDATE items
		SET name = ?, status = ?, category = ?, supplier = ?,
		    weight = ?, quantity = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		p.Name, p.Status, p.Category, p.Supplier, p.Weight, p.Quantity, time.Now().Unix(), id)
	if err != nil {
		return api.Item{}, fmt.Errorf("failed to update item: %w", err)
	}

	if err := expectAffected(result); err != nil {
		return api.Item{}, err
	}

	return itemFromPayload(id, p), nil
}

// DeleteItem removes an item
// Returns ErrItemNotFound if item doesn't exist
func (s *Storage) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return expectAffected(result)
}

// ListItems returns all items in creation order
func (s *Storage) ListItems(ctx context.Context) ([]api.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id ASC`)
}

// ListByCategory returns items of the category in creation order
func (s *Storage) ListByCategory(ctx context.Context, category string) ([]api.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY id ASC`, category)
}

// ListBySupplier returns items of the supplier in creation order
func (s *Storage) ListBySupplier(ctx context.Context, supplier string) ([]api.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE supplier = ? ORDER BY id ASC`, supplier)
}

// Categories returns distinct categories in alphabetical order
func (s *Storage) Categories(ctx context.Context) (categories []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM items ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	categories = []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return categories, nil
}

// queryItems выполняет запрос и сканирует строки в позиции
func (s *Storage) queryItems(ctx context.Context, query string, args ...any) (items []api.Item, err error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	items = []api.Item{}
	for rows.Next() {
		var item api.Item
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Status,
			&item.Category,
			&item.Supplier,
			&item.Weight,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

func itemFromPayload(id int64, p api.ItemPayload) api.Item {
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

var _ storage.ItemStorage = (*Storage)(nil)
