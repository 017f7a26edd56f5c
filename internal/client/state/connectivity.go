package state

import "sync"

// Connectivity флаг онлайн/офлайн. Пишет хост-окружение (пробер) или
// пользователь вручную; побеждает последняя запись. Истории нет.
type Connectivity struct {
	observers observers[bool]
	mu        sync.RWMutex
	online    bool
}

// NewConnectivity creates the flag with an initial value
func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{online: online}
}

// Online returns the current value
func (c *Connectivity) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// Set writes the flag. Observers are notified only when the value changes.
func (c *Connectivity) Set(online bool) {
	c.mu.Lock()
	changed := c.online != online
	c.online = online
	c.mu.Unlock()

	if changed {
		c.observers.notify(online)
	}
}

// Subscribe registers fn for transitions. The returned func unsubscribes.
func (c *Connectivity) Subscribe(fn func(online bool)) (unsubscribe func()) {
	return c.observers.add(fn)
}
