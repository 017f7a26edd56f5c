package clock

import (
	"sync"
	"time"

	"github.com/iudanet/stockkeeper/internal/models"
)

// Local представляет монотонные локальные часы для временных идентификаторов
// записей, созданных без связи с сервером. Значение основано на времени в
// миллисекундах, но никогда не повторяется: next = max(now, last+1).
type Local struct {
	now  func() time.Time // источник времени (подменяется в тестах)
	last int64            // последнее выданное значение
	mu   sync.Mutex
}

// NewLocal создает часы на основе time.Now.
func NewLocal() *Local {
	return &Local{now: time.Now}
}

// NewLocalWithSource создает часы с заданным источником времени.
// Используется для тестирования.
func NewLocalWithSource(now func() time.Time) *Local {
	return &Local{now: now}
}

// Tick возвращает следующий токен. Два вызова подряд всегда дают разные значения,
// даже в пределах одной миллисекунды.
func (c *Local) Tick() models.LocalToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms

	return models.LocalToken(ms)
}

// Last возвращает последнее выданное значение без изменения часов.
func (c *Local) Last() models.LocalToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.LocalToken(c.last)
}

// Observe продвигает часы до token, если он больше текущего значения.
// Используется после гидратации, чтобы новые токены не совпали с уже
// сохраненными в кэше.
func (c *Local) Observe(token models.LocalToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int64(token) > c.last {
		c.last = int64(token)
	}
}
