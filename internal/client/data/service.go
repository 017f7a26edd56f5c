// Package data реализует действия пользователя над позициями: создание
// (онлайн и офлайн), обновление списка, просмотр, изменение и удаление.
package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/state"
	"github.com/iudanet/stockkeeper/internal/clock"
	"github.com/iudanet/stockkeeper/internal/models"
	"github.com/iudanet/stockkeeper/internal/validation"
)

// RemoteAPI операции сервера, нужные для действий пользователя
type RemoteAPI interface {
	ListItems(ctx context.Context) ([]models.Record, error)
	GetItem(ctx context.Context, id models.RecordID) (models.Record, error)
	CreateItem(ctx context.Context, p models.Payload) (models.Record, error)
	UpdateItem(ctx context.Context, id models.RecordID, p models.Payload) (models.Record, error)
	DeleteItem(ctx context.Context, id models.RecordID) error
	SupplierItems(ctx context.Context, supplier string) ([]models.Record, error)
}

var (
	// ErrOffline операция требует связи с сервером
	ErrOffline = errors.New("offline")
	// ErrNotFound позиции нет в локальном репозитории
	ErrNotFound = errors.New("item not found")
	// ErrPendingRecord позиция еще не отправлена на сервер
	ErrPendingRecord = errors.New("item is waiting for sync")
	// ErrNoSupplier имя поставщика не задано
	ErrNoSupplier = errors.New("supplier name is not set")
)

// Service действия пользователя над позициями
type Service struct {
	remote   RemoteAPI
	state    *state.State
	clock    *clock.Local
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService creates a new data service
func NewService(remote RemoteAPI, st *state.State, clk *clock.Local, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if clk == nil {
		clk = clock.NewLocal()
	}
	return &Service{
		remote:   remote,
		state:    st,
		clock:    clk,
		notifier: notifier,
		logger:   logger.With("category", "APP"),
	}
}

// Items возвращает позиции из локального репозитория
func (s *Service) Items() []models.Record {
	return s.state.Repository.Snapshot()
}

// Pending возвращает очередь отложенных созданий
func (s *Service) Pending() []models.Payload {
	return s.state.Queue.Snapshot()
}

// AddItem создает позицию. Без связи позиция ставится в очередь и сразу
// показывается с локальным id; отправит ее sync.Engine.
func (s *Service) AddItem(ctx context.Context, p models.Payload) (models.Record, error) {
	if err := validation.ValidatePayload(p); err != nil {
		if errors.Is(err, validation.ErrMissingFields) {
			s.notifier.Notify(notify.Error, "Missing Fields", "Please fill in all details")
		} else {
			s.notifier.Notify(notify.Error, "Error", err.Error())
		}
		return models.Record{}, err
	}

	if !s.state.Connectivity.Online() {
		rec := models.NewPendingRecord(s.clock.Tick(), p)
		s.state.Queue.Enqueue(p)
		s.state.Repository.Append(rec)

		s.logger.Info("Item queued for sync", "id", rec.ID, "name", p.Name, "pending", s.state.Queue.Len())
		s.notifier.Notify(notify.Info, "Offline Mode", "Item saved locally and will sync when online.")
		return rec, nil
	}

	rec, err := s.remote.CreateItem(ctx, p)
	if err != nil {
		s.logger.Error("Add item error", "name", p.Name, "error", err)
		s.notifier.Notify(notify.Error, "Error", messageOr(err, "Failed to record item"))
		return models.Record{}, fmt.Errorf("failed to create item: %w", err)
	}

	s.state.Repository.Append(rec)
	s.notifier.Notify(notify.Success, "Success", "Item recorded successfully")

	return rec, nil
}

// Refresh возвращает список позиций. Если кэш не пуст и force не задан,
// сервер не запрашивается.
func (s *Service) Refresh(ctx context.Context, force bool) ([]models.Record, error) {
	if !force && s.state.Repository.Len() > 0 {
		s.logger.Debug("Using cached items")
		return s.state.Repository.Snapshot(), nil
	}

	if !s.state.Connectivity.Online() {
		if force {
			s.notifier.Notify(notify.Error, "Offline", "Cannot refresh while offline.")
			return s.state.Repository.Snapshot(), ErrOffline
		}
		return s.state.Repository.Snapshot(), nil
	}

	records, err := s.remote.ListItems(ctx)
	if err != nil {
		s.logger.Error("Fetch error", "error", err)
		s.notifier.Notify(notify.Error, "Fetch Error", messageOr(err, "Failed to fetch items"))
		return s.state.Repository.Snapshot(), fmt.Errorf("failed to fetch items: %w", err)
	}

	s.state.Repository.ReplaceAll(records)
	return records, nil
}

// GetItem возвращает позицию. При наличии связи данные запрашиваются с
// сервера каждый раз; при ошибке возвращается кэшированная версия.
func (s *Service) GetItem(ctx context.Context, id models.RecordID) (models.Record, error) {
	cached, found := s.state.Repository.Get(id)

	if !s.state.Connectivity.Online() || id.IsPending() {
		if !found {
			return models.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return cached, nil
	}

	fresh, err := s.remote.GetItem(ctx, id)
	if err != nil {
		s.logger.Error("Failed to fetch fresh item details", "id", id, "error", err)
		s.notifier.Notify(notify.Error, "Sync Error", "Could not fetch latest details from server.")
		if found {
			return cached, nil
		}
		return models.Record{}, fmt.Errorf("failed to fetch item %s: %w", id, err)
	}

	return fresh, nil
}

// UpdateItem изменяет позицию на сервере. Требует связи.
func (s *Service) UpdateItem(ctx context.Context, id models.RecordID, p models.Payload) (models.Record, error) {
	if err := validation.ValidatePayload(p); err != nil {
		s.notifier.Notify(notify.Error, "Error", err.Error())
		return models.Record{}, err
	}
	if err := s.requireRemote(id, "Cannot update items while offline."); err != nil {
		return models.Record{}, err
	}

	rec, err := s.remote.UpdateItem(ctx, id, p)
	if err != nil {
		s.notifier.Notify(notify.Error, "Update failed", notify.ErrorMessage(err))
		return models.Record{}, fmt.Errorf("failed to update item %s: %w", id, err)
	}

	s.state.Repository.Upsert(rec)
	s.notifier.Notify(notify.Success, "Item updated successfully", "")

	return rec, nil
}

// DeleteItem удаляет позицию на сервере и из репозитория. Требует связи.
func (s *Service) DeleteItem(ctx context.Context, id models.RecordID) error {
	if err := s.requireRemote(id, "Cannot delete items while offline."); err != nil {
		return err
	}

	if err := s.remote.DeleteItem(ctx, id); err != nil {
		s.notifier.Notify(notify.Error, "Delete failed", notify.ErrorMessage(err))
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}

	s.state.Repository.RemoveByID(id)
	s.notifier.Notify(notify.Success, "Item deleted successfully", "")

	return nil
}

// SupplierName возвращает сохраненное имя поставщика
func (s *Service) SupplierName() string {
	return s.state.Settings.SupplierName()
}

// SetSupplierName сохраняет имя поставщика
func (s *Service) SetSupplierName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: supplier name", validation.ErrMissingFields)
	}

	s.state.Settings.SetSupplierName(name)
	s.notifier.Notify(notify.Success, "Saved", fmt.Sprintf("Supplier name set to %s", name))

	return nil
}

// SupplierItems возвращает позиции сохраненного поставщика. Требует связи.
func (s *Service) SupplierItems(ctx context.Context) ([]models.Record, error) {
	supplier := s.state.Settings.SupplierName()
	if supplier == "" {
		s.notifier.Notify(notify.Info, "Missing Name", "Please record a supplier name first.")
		return nil, ErrNoSupplier
	}
	if !s.state.Connectivity.Online() {
		s.notifier.Notify(notify.Error, "Offline", "Viewing supplier items requires internet.")
		return nil, ErrOffline
	}

	records, err := s.remote.SupplierItems(ctx, supplier)
	if err != nil {
		s.notifier.Notify(notify.Error, "Error", notify.ErrorMessage(err))
		return nil, fmt.Errorf("failed to fetch supplier items: %w", err)
	}

	return records, nil
}

func (s *Service) requireRemote(id models.RecordID, offlineMessage string) error {
	if !s.state.Connectivity.Online() {
		s.notifier.Notify(notify.Error, "Offline", offlineMessage)
		return ErrOffline
	}
	if !id.IsRemote() {
		s.notifier.Notify(notify.Error, "Error", "Item is waiting for sync.")
		return fmt.Errorf("%w: %s", ErrPendingRecord, id)
	}
	return nil
}

func messageOr(err error, fallback string) string {
	if msg := notify.ErrorMessage(err); msg != "" {
		return msg
	}
	return fallback
}
