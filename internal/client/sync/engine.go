// Package sync отправляет накопленные офлайн-создания на сервер.
//
// Engine находится в одном из двух состояний: Idle или Flushing. Одновременно
// выполняется не более одной отправки очереди; запрос на отправку во время
// Flushing отклоняется (ErrFlushInProgress), а не ставится в очередь.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/state"
	"github.com/iudanet/stockkeeper/internal/models"
)

//go:generate moq -out remoteapi_mock.go . RemoteAPI

// RemoteAPI часть API сервера, нужная для синхронизации
type RemoteAPI interface {
	CreateItem(ctx context.Context, p models.Payload) (models.Record, error)
	ListItems(ctx context.Context) ([]models.Record, error)
}

var (
	// ErrFlushInProgress отправка уже выполняется
	ErrFlushInProgress = errors.New("flush already in progress")
	// ErrSyncFailed отправка прервана; очередь сохранена для повтора
	ErrSyncFailed = errors.New("sync failed")
	// ErrOffline нет связи с сервером
	ErrOffline = errors.New("offline")
	// ErrClosed engine остановлен
	ErrClosed = errors.New("sync engine closed")
)

const (
	titleSyncComplete = "Sync Complete"
	titleSyncError    = "Sync Error"
	detailSyncError   = "Failed to sync some offline items. Will retry later."
)

// FlushResult итог успешной отправки
type FlushResult struct {
	Synced int // количество отправленных записей очереди
	Items  int // количество записей в обновленном репозитории
}

// Engine синхронизирует очередь офлайн-созданий с сервером
type Engine struct {
	remote   RemoteAPI
	state    *state.State
	notifier notify.Notifier
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	unsub    []func()
	wg       sync.WaitGroup
	mu       sync.Mutex
	flushing atomic.Bool
	closed   bool
}

// NewEngine создает Engine. Фоновая отправка начинается после Start.
func NewEngine(remote RemoteAPI, st *state.State, notifier notify.Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Discard{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		remote:   remote,
		state:    st,
		notifier: notifier,
		logger:   logger.With("category", "APP"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start подписывается на смену связи и длины очереди и один раз проверяет
// условие запуска. Отмена ctx эквивалентна Close без ожидания.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.unsub = append(e.unsub,
		e.state.Connectivity.Subscribe(func(bool) { e.Trigger() }),
		e.state.Queue.Subscribe(func(int) { e.Trigger() }),
	)
	e.mu.Unlock()

	context.AfterFunc(ctx, e.cancel)

	e.Trigger()
}

// Trigger запускает фоновую отправку, если есть связь, очередь не пуста и
// отправка еще не идет. Иначе ничего не делает.
func (e *Engine) Trigger() {
	if !e.shouldFlush() {
		return
	}
	if !e.flushing.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	if e.closed || e.ctx.Err() != nil {
		e.mu.Unlock()
		e.flushing.Store(false)
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()

		_, err := e.flush(e.ctx)
		e.flushing.Store(false)

		if err != nil {
			// повтор при следующей смене связи или новой записи в очереди
			return
		}
		// записи, добавленные во время отправки
		e.Trigger()
	}()
}

// Flush синхронно отправляет очередь. Возвращает ErrFlushInProgress, если
// отправка уже идет, и ErrOffline без связи.
func (e *Engine) Flush(ctx context.Context) (*FlushResult, error) {
	if !e.state.Connectivity.Online() {
		return nil, ErrOffline
	}
	if !e.flushing.CompareAndSwap(false, true) {
		return nil, ErrFlushInProgress
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.flushing.Store(false)
		return nil, ErrClosed
	}
	e.wg.Add(1)
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.ctx, cancel)

	result, err := e.flush(ctx)

	stop()
	cancel()
	e.flushing.Store(false)
	e.wg.Done()

	if err == nil {
		e.Trigger()
	}
	return result, err
}

// Flushing сообщает, выполняется ли отправка
func (e *Engine) Flushing() bool {
	return e.flushing.Load()
}

// Close отписывается, отменяет текущую отправку и дожидается ее завершения
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsub := e.unsub
	e.unsub = nil
	e.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
	e.cancel()
	e.wg.Wait()
}

func (e *Engine) shouldFlush() bool {
	return e.state.Connectivity.Online() && e.state.Queue.Len() > 0 && !e.flushing.Load()
}

// flush отправляет снимок очереди строго по порядку. Любая ошибка прерывает
// отправку, очередь при этом не меняется и будет отправлена целиком повторно.
func (e *Engine) flush(ctx context.Context) (*FlushResult, error) {
	pending := e.state.Queue.Snapshot()
	if len(pending) == 0 {
		return &FlushResult{Items: e.state.Repository.Len()}, nil
	}
	// заглушки, существующие до отправки; их заменит список сервера
	placeholders := pendingIDs(e.state.Repository.Snapshot())

	e.logger.Info("Syncing offline items", "count", len(pending))

	for i, p := range pending {
		if _, err := e.remote.CreateItem(ctx, p); err != nil {
			e.logger.Error("Sync failed",
				"position", i+1,
				"count", len(pending),
				"name", p.Name,
				"error", err)
			e.notifier.Notify(notify.Error, titleSyncError, detailSyncError)
			return nil, fmt.Errorf("%w: item %d of %d: %w", ErrSyncFailed, i+1, len(pending), err)
		}
	}

	// удаляем ровно отправленные записи
	e.state.Queue.TrimFront(len(pending))
	result := &FlushResult{Synced: len(pending)}

	// обновляем список с сервера, чтобы получить настоящие id
	records, err := e.remote.ListItems(ctx)
	if err != nil {
		e.logger.Error("Failed to refresh items after sync", "error", err)
		e.notifier.Notify(notify.Error, titleSyncError, detailSyncError)
		return result, fmt.Errorf("%w: refresh after sync: %w", ErrSyncFailed, err)
	}

	// заглушки записей, добавленных в очередь во время отправки, остаются
	// видимыми до следующей отправки
	e.state.Repository.ReplaceAllKeeping(records, func(rec models.Record) bool {
		_, existed := placeholders[rec.ID]
		return rec.ID.IsPending() && !existed
	})
	result.Items = e.state.Repository.Len()

	e.logger.Info("Sync completed", "synced", result.Synced, "items", result.Items)
	e.notifier.Notify(notify.Success, titleSyncComplete, fmt.Sprintf("Successfully synced %d items.", result.Synced))

	return result, nil
}

func pendingIDs(records []models.Record) map[models.RecordID]struct{} {
	ids := make(map[models.RecordID]struct{})
	for _, rec := range records {
		if rec.ID.IsPending() {
			ids[rec.ID] = struct{}{}
		}
	}
	return ids
}
