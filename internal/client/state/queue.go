package state

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/stockkeeper/internal/client/storage"
	"github.com/iudanet/stockkeeper/internal/models"
)

// Queue FIFO-очередь отложенных созданий (payload без id).
// Порядок вставки сохраняется; мутации планируют запись под storage.KeyOfflineQueue.
type Queue struct {
	persist   *persister
	observers observers[int]
	items     []models.Payload
	mu        sync.RWMutex
}

func newQueue(p *persister) *Queue {
	return &Queue{persist: p, items: []models.Payload{}}
}

// Enqueue добавляет payload в конец очереди.
func (q *Queue) Enqueue(p models.Payload) {
	q.mu.Lock()
	q.items = append(q.items, p)
	n := len(q.items)
	q.persist.schedule(slices.Clone(q.items))
	q.mu.Unlock()

	q.observers.notify(n)
}

// Snapshot returns a copy of the pending entries in insertion order.
func (q *Queue) Snapshot() []models.Payload {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return slices.Clone(q.items)
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Clear удаляет все записи.
func (q *Queue) Clear() {
	q.mu.Lock()
	changed := len(q.items) != 0
	q.items = []models.Payload{}
	q.persist.schedule([]models.Payload{})
	q.mu.Unlock()

	if changed {
		q.observers.notify(0)
	}
}

// TrimFront удаляет первые n записей - ровно те, что были отправлены.
// Записи, добавленные во время синхронизации, остаются в очереди.
func (q *Queue) TrimFront(n int) {
	if n <= 0 {
		return
	}

	q.mu.Lock()
	n = min(n, len(q.items))
	q.items = slices.Clone(q.items[n:])
	left := len(q.items)
	q.persist.schedule(slices.Clone(q.items))
	q.mu.Unlock()

	q.observers.notify(left)
}

// Subscribe registers fn for length changes. The returned func unsubscribes.
func (q *Queue) Subscribe(fn func(length int)) (unsubscribe func()) {
	return q.observers.add(fn)
}

func (q *Queue) hydrate(items []models.Payload, logger *slog.Logger) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = items
	logger.Debug("Queue hydrated", "key", storage.KeyOfflineQueue, "count", len(items))
}
