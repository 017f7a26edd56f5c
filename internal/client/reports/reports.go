// Package reports строит отчеты по позициям: категории, самые тяжелые
// позиции и поставщики с наибольшим числом позиций.
package reports

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/state"
	"github.com/iudanet/stockkeeper/internal/models"
)

const (
	// HeaviestLimit количество позиций в отчете по весу
	HeaviestLimit = 10
	// TopSuppliersLimit количество поставщиков в отчете
	TopSuppliersLimit = 5
)

// ErrOffline отчеты доступны только при наличии связи
var ErrOffline = errors.New("reports require a connection")

// RemoteAPI операции сервера для отчетов
type RemoteAPI interface {
	Categories(ctx context.Context) ([]string, error)
	ListAllItems(ctx context.Context) ([]models.Record, error)
	ItemsByCategory(ctx context.Context, category string) ([]models.Record, error)
}

// SupplierCount число позиций поставщика
type SupplierCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report результат Build
type Report struct {
	Category      string          `json:"category,omitempty"`
	Categories    []string        `json:"categories"`
	Heaviest      []models.Record `json:"heaviest"`
	TopSuppliers  []SupplierCount `json:"top_suppliers"`
	CategoryItems []models.Record `json:"category_items,omitempty"`
}

// Service строит отчеты
type Service struct {
	remote   RemoteAPI
	flag     *state.Connectivity
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService создает сервис отчетов
func NewService(remote RemoteAPI, flag *state.Connectivity, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		remote:   remote,
		flag:     flag,
		notifier: notifier,
		logger:   logger.With("category", "APP"),
	}
}

// Build запрашивает категории и все позиции; если category не пуст,
// дополнительно загружает позиции этой категории.
func (s *Service) Build(ctx context.Context, category string) (*Report, error) {
	if !s.flag.Online() {
		return nil, ErrOffline
	}

	categories, err := s.remote.Categories(ctx)
	if err != nil {
		return nil, s.fail("Report Error", err)
	}

	all, err := s.remote.ListAllItems(ctx)
	if err != nil {
		return nil, s.fail("Report Error", err)
	}

	report := &Report{
		Category:     category,
		Categories:   categories,
		Heaviest:     Heaviest(all, HeaviestLimit),
		TopSuppliers: TopSuppliers(all, TopSuppliersLimit),
	}

	if category != "" {
		items, err := s.remote.ItemsByCategory(ctx, category)
		if err != nil {
			return nil, s.fail("Error", err)
		}
		report.CategoryItems = items
	}

	s.logger.Debug("Report built",
		"categories", len(categories),
		"items", len(all),
		"category", category)

	return report, nil
}

func (s *Service) fail(title string, err error) error {
	s.logger.Error("Report fetch error", "error", err)
	s.notifier.Notify(notify.Error, title, notify.ErrorMessage(err))
	return fmt.Errorf("failed to build report: %w", err)
}

// Heaviest возвращает до limit позиций с наибольшим весом (по убыванию).
// При равном весе сохраняется исходный порядок.
func Heaviest(records []models.Record, limit int) []models.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.Record) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// TopSuppliers возвращает до limit поставщиков с наибольшим числом позиций.
// При равенстве порядок - по первому появлению поставщика.
func TopSuppliers(records []models.Record, limit int) []SupplierCount {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if _, seen := counts[rec.Supplier]; !seen {
			order = append(order, rec.Supplier)
		}
		counts[rec.Supplier]++
	}

	result := make([]SupplierCount, 0, len(order))
	for _, name := range order {
		result = append(result, SupplierCount{Name: name, Count: counts[name]})
	}
	slices.SortStableFunc(result, func(a, b SupplierCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
