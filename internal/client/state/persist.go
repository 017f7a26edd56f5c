package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iudanet/stockkeeper/internal/client/storage"
)

// persister сохраняет снимок одного ключа в фоне (fire-and-forget).
// Мутации только планируют запись; единственный писатель сохраняет последний
// запланированный снимок, промежуточные схлопываются. Ошибка записи логируется
// и не откатывает состояние в памяти - ее перекроет следующая успешная запись.
type persister struct {
	store   storage.KVStore
	logger  *slog.Logger
	onError func(key string, err error)
	idle    *sync.Cond
	pending any
	key     string
	mu      sync.Mutex
	dirty   bool
	running bool
}

func newPersister(store storage.KVStore, key string, logger *slog.Logger, onError func(string, error)) *persister {
	p := &persister{
		store:   store,
		key:     key,
		logger:  logger,
		onError: onError,
	}
	p.idle = sync.NewCond(&p.mu)
	return p
}

// schedule планирует запись value. Не блокируется.
func (p *persister) schedule(value any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = value
	p.dirty = true

	if !p.running {
		p.running = true
		go p.run()
	}
}

func (p *persister) run() {
	for {
		p.mu.Lock()
		if !p.dirty {
			p.running = false
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		value := p.pending
		p.pending = nil
		p.dirty = false
		p.mu.Unlock()

		if err := p.store.Save(context.Background(), p.key, value); err != nil {
			p.logger.Error("Failed to persist state", "key", p.key, "error", err)
			if p.onError != nil {
				p.onError(p.key, err)
			}
		}
	}
}

// wait блокируется, пока все запланированные записи не выполнены.
func (p *persister) wait() {
	p.mu.Lock()
	for p.running {
		p.idle.Wait()
	}
	p.mu.Unlock()
}
