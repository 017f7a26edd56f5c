package state

import "sync"

// Settings хранит имя поставщика для экрана "Supplier Items".
type Settings struct {
	persist  *persister
	supplier string
	mu       sync.RWMutex
}

// SupplierName returns the remembered supplier name ("" when unset).
func (s *Settings) SupplierName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supplier
}

// SetSupplierName запоминает имя поставщика.
func (s *Settings) SetSupplierName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.supplier = name
	s.persist.schedule(name)
}
