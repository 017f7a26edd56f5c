// Package state содержит контейнеры состояния клиента: флаг связи,
// репозиторий записей, очередь офлайн-операций и настройки.
// Контейнеры создаются явно и передаются зависимым сервисам.
package state

import (
	"context"
	"log/slog"

	"github.com/iudanet/stockkeeper/internal/client/storage"
	"github.com/iudanet/stockkeeper/internal/models"
)

// State объединяет контейнеры одного клиентского процесса.
type State struct {
	store        storage.KVStore
	logger       *slog.Logger
	Connectivity *Connectivity
	Repository   *Repository
	Queue        *Queue
	Settings     *Settings
	persisters   []*persister
}

type options struct {
	onPersistError func(key string, err error)
	online         bool
}

// Option настраивает State.
type Option func(*options)

// WithPersistErrorHandler задает обработчик ошибок фоновой записи.
func WithPersistErrorHandler(fn func(key string, err error)) Option {
	return func(o *options) { o.onPersistError = fn }
}

// WithInitialOnline задает начальное значение флага связи (по умолчанию true).
func WithInitialOnline(online bool) Option {
	return func(o *options) { o.online = online }
}

// New создает контейнеры над хранилищем store.
func New(store storage.KVStore, logger *slog.Logger, opts ...Option) *State {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("category", "DB")

	o := options{online: true}
	for _, opt := range opts {
		opt(&o)
	}

	items := newPersister(store, storage.KeyItems, logger, o.onPersistError)
	queue := newPersister(store, storage.KeyOfflineQueue, logger, o.onPersistError)
	supplier := newPersister(store, storage.KeySupplierName, logger, o.onPersistError)

	return &State{
		store:        store,
		logger:       logger,
		Connectivity: NewConnectivity(o.online),
		Repository:   newRepository(items),
		Queue:        newQueue(queue),
		Settings:     &Settings{persist: supplier},
		persisters:   []*persister{items, queue, supplier},
	}
}

// Hydrate загружает сохраненные значения. Отсутствующие или пустые значения
// оставляют значения по умолчанию. Повторный вызов дает тот же результат.
func (s *State) Hydrate(ctx context.Context) {
	var supplier string
	if s.store.Load(ctx, storage.KeySupplierName, &supplier) && supplier != "" {
		s.Settings.mu.Lock()
		s.Settings.supplier = supplier
		s.Settings.mu.Unlock()
	}

	var items []models.Record
	if s.store.Load(ctx, storage.KeyItems, &items) && items != nil {
		s.Repository.hydrate(items, s.logger)
	}

	var queue []models.Payload
	if s.store.Load(ctx, storage.KeyOfflineQueue, &queue) && queue != nil {
		s.Queue.hydrate(queue, s.logger)
	}

	s.logger.Info("State hydrated",
		"items", s.Repository.Len(),
		"pending", s.Queue.Len(),
		"supplier", supplier != "",
	)
}

// Wait блокируется, пока все запланированные записи не сохранены.
func (s *State) Wait() {
	for _, p := range s.persisters {
		p.wait()
	}
}

// Close дожидается фоновых записей. Хранилище закрывает владелец.
func (s *State) Close() {
	s.Wait()
}
