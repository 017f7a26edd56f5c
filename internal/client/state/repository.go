package state

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/stockkeeper/internal/client/storage"
	"github.com/iudanet/stockkeeper/internal/models"
)

// Repository упорядоченный список записей, показываемых пользователю.
// Каждая мутация планирует сохранение под ключом storage.KeyItems.
type Repository struct {
	persist *persister
	items   []models.Record
	mu      sync.RWMutex
}

func newRepository(p *persister) *Repository {
	return &Repository{persist: p, items: []models.Record{}}
}

// Snapshot returns a copy of the current sequence.
func (r *Repository) Snapshot() []models.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Get returns the record with the given id.
func (r *Repository) Get(id models.RecordID) (models.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := slices.IndexFunc(r.items, func(rec models.Record) bool { return rec.ID == id })
	if i < 0 {
		return models.Record{}, false
	}
	return r.items[i], true
}

// Has reports whether a record with the given id is present.
func (r *Repository) Has(id models.RecordID) bool {
	_, ok := r.Get(id)
	return ok
}

// ReplaceAll заменяет всю последовательность (например, после синхронизации).
func (r *Repository) ReplaceAll(records []models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = slices.Clone(records)
	if r.items == nil {
		r.items = []models.Record{}
	}
	r.persist.schedule(slices.Clone(r.items))
}

// ReplaceAllKeeping заменяет последовательность на records и оставляет в конце
// текущие записи, для которых keep возвращает true. Выполняется атомарно.
func (r *Repository) ReplaceAllKeeping(records []models.Record, keep func(models.Record) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]models.Record, 0, len(records))
	items = append(items, records...)
	for _, rec := range r.items {
		if keep(rec) {
			items = append(items, rec)
		}
	}
	r.items = items
	r.persist.schedule(slices.Clone(r.items))
}

// Append добавляет запись в конец.
func (r *Repository) Append(rec models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, rec)
	r.persist.schedule(slices.Clone(r.items))
}

// AppendIfAbsent добавляет запись, только если записи с таким id нет.
// Проверка и вставка выполняются атомарно.
func (r *Repository) AppendIfAbsent(rec models.Record) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.ContainsFunc(r.items, func(x models.Record) bool { return x.ID == rec.ID }) {
		return false
	}
	r.items = append(r.items, rec)
	r.persist.schedule(slices.Clone(r.items))
	return true
}

// Upsert заменяет запись с тем же id или добавляет новую в конец.
func (r *Repository) Upsert(rec models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := slices.IndexFunc(r.items, func(x models.Record) bool { return x.ID == rec.ID }); i >= 0 {
		r.items[i] = rec
	} else {
		r.items = append(r.items, rec)
	}
	r.persist.schedule(slices.Clone(r.items))
}

// RemoveByID удаляет запись по id. Возвращает false, если записи нет.
func (r *Repository) RemoveByID(id models.RecordID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.items, func(x models.Record) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	r.items = slices.Delete(r.items, i, i+1)
	r.persist.schedule(slices.Clone(r.items))
	return true
}

// MaxPendingToken returns the largest local token among pending records.
func (r *Repository) MaxPendingToken() models.LocalToken {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var maxToken models.LocalToken
	for _, rec := range r.items {
		if token, ok := rec.ID.Local(); ok && token > maxToken {
			maxToken = token
		}
	}
	return maxToken
}

// hydrate устанавливает содержимое без повторной записи в хранилище.
func (r *Repository) hydrate(records []models.Record, logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = records
	logger.Debug("Repository hydrated", "key", storage.KeyItems, "count", len(records))
}
