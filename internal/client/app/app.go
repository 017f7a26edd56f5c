// Package app собирает клиентские компоненты и управляет их жизненным
// циклом: открытие хранилища и гидратация, фоновая синхронизация, канал
// push-обновлений, проверка связи и корректное завершение.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/stockkeeper/internal/client/api"
	"github.com/iudanet/stockkeeper/internal/client/config"
	"github.com/iudanet/stockkeeper/internal/client/connectivity"
	"github.com/iudanet/stockkeeper/internal/client/data"
	"github.com/iudanet/stockkeeper/internal/client/live"
	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/reports"
	"github.com/iudanet/stockkeeper/internal/client/state"
	"github.com/iudanet/stockkeeper/internal/client/storage"
	"github.com/iudanet/stockkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/stockkeeper/internal/client/storage/memory"
	syncengine "github.com/iudanet/stockkeeper/internal/client/sync"
	"github.com/iudanet/stockkeeper/internal/clock"
	"github.com/iudanet/stockkeeper/internal/models"
)

// MemoryDBPath значение db_path для хранилища в памяти
const MemoryDBPath = ":memory:"

// Options зависимости App. Пустые поля заполняются по Config.
type Options struct {
	Notifier notify.Notifier
	Store    storage.KVStore
	Logger   *slog.Logger
	Clock    *clock.Local
	Modal    *notify.Modal
	Config   config.Config
}

// App клиентский процесс
type App struct {
	cfg        config.Config
	logger     *slog.Logger
	closeStore func() error
	clock      *clock.Local

	State    *state.State
	API      *api.Client
	Notifier notify.Notifier
	Modal    *notify.Modal
	Errors   *notify.ErrorHandler
	Engine   *syncengine.Engine
	Live     *live.Channel
	Prober   *connectivity.Prober
	Data     *data.Service
	Reports  *reports.Service
}

// New открывает хранилище, гидратирует состояние и создает компоненты.
// Фоновые задачи не запускаются до Start.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	a := &App{
		cfg:        cfg,
		logger:     logger.With("category", "APP"),
		closeStore: func() error { return nil },
		clock:      opts.Clock,
		Notifier:   opts.Notifier,
		Modal:      opts.Modal,
	}
	if a.clock == nil {
		a.clock = clock.NewLocal()
	}
	if a.Notifier == nil {
		a.Notifier = notify.Discard{}
	}
	if a.Modal == nil {
		a.Modal = notify.NewModal()
	}
	a.Errors = notify.NewErrorHandler(a.Notifier, a.Modal, logger)

	store := opts.Store
	if store == nil {
		var err error
		store, err = a.openStore(ctx, logger)
		if err != nil {
			return nil, err
		}
	}

	a.State = state.New(store, logger,
		state.WithInitialOnline(!cfg.Offline),
		state.WithPersistErrorHandler(func(key string, err error) {
			a.Errors.HandleStorageError(err, "save "+key)
		}),
	)
	a.State.Hydrate(ctx)
	// новые локальные id не должны совпасть с сохраненными
	a.clock.Observe(a.State.Repository.MaxPendingToken())

	a.API = api.NewClient(cfg.ServerURL, logger, api.WithTimeout(cfg.Timeout))
	a.Engine = syncengine.NewEngine(a.API, a.State, a.Notifier, logger)
	a.Live = live.NewChannel(cfg.SocketURL, logger, live.WithReconnectDelay(cfg.ReconnectDelay))
	a.Prober = connectivity.NewProber(a.API, a.State.Connectivity, cfg.OnlineCheckInterval, logger)
	a.Data = data.NewService(a.API, a.State, a.clock, a.Notifier, logger)
	a.Reports = reports.NewService(a.API, a.State.Connectivity, a.Notifier, logger)

	return a, nil
}

func (a *App) openStore(ctx context.Context, logger *slog.Logger) (storage.KVStore, error) {
	if a.cfg.DBPath == MemoryDBPath {
		return memory.New(logger), nil
	}

	db, err := boltdb.New(ctx, a.cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closeStore = db.Close
	return db, nil
}

// Start запускает фоновую синхронизацию и канал push-обновлений
func (a *App) Start(ctx context.Context) {
	a.Engine.Start(ctx)
	a.Live.SetHandler(a.MergePushed)
	a.Live.Connect(ctx)
	a.logger.Info("Client started",
		"online", a.State.Connectivity.Online(),
		"items", a.State.Repository.Len(),
		"pending", a.State.Queue.Len())
}

// RunProber периодически проверяет связь до отмены ctx.
// В ручном офлайн-режиме проверка не выполняется.
func (a *App) RunProber(ctx context.Context) error {
	if a.cfg.Offline {
		return nil
	}
	return a.Prober.Run(ctx)
}

// ProbeOnce один раз проверяет связь (для разовых команд)
func (a *App) ProbeOnce(ctx context.Context) {
	if a.cfg.Offline || !a.Prober.Enabled() {
		return
	}
	a.Prober.Probe(ctx)
}

// SetOnline вручную переключает режим связи
func (a *App) SetOnline(online bool) {
	a.State.Connectivity.Set(online)
}

// SyncPending синхронно отправляет очередь, если есть связь и очередь не пуста
func (a *App) SyncPending(ctx context.Context) (*syncengine.FlushResult, error) {
	if !a.State.Connectivity.Online() || a.State.Queue.Len() == 0 {
		return &syncengine.FlushResult{Items: a.State.Repository.Len()}, nil
	}
	return a.Engine.Flush(ctx)
}

// MergePushed добавляет запись, полученную по push-каналу, если ее еще нет
func (a *App) MergePushed(rec models.Record) {
	if !a.State.Repository.AppendIfAbsent(rec) {
		a.logger.Debug("Pushed item already present", "id", rec.ID)
		return
	}

	a.Notifier.Notify(notify.Info, "New Item Added!",
		fmt.Sprintf("%s (%s) - %s", rec.Name, rec.Category, rec.Status))
}

// Close останавливает фоновые задачи, дожидается записи состояния и
// закрывает хранилище
func (a *App) Close() error {
	a.Live.ClearHandler()
	a.Live.Close()
	a.Engine.Close()
	a.State.Close()

	if err := a.closeStore(); err != nil && !errors.Is(err, storage.ErrStorageClosed) {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.logger.Debug("Client stopped")
	return nil
}
