package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/models"
)

func fixedSource(ms int64) func() time.Time {
	return func() time.Time {
		return time.UnixMilli(ms)
	}
}

func TestNewLocal(t *testing.T) {
	c := NewLocal()

	require.NotNil(t, c)
	assert.Equal(t, models.LocalToken(0), c.Last(), "Initial value should be 0")
	assert.Greater(t, c.Tick(), models.LocalToken(0))
}

func TestLocal_Tick_UsesWallClock(t *testing.T) {
	c := NewLocalWithSource(fixedSource(1700000000000))

	assert.Equal(t, models.LocalToken(1700000000000), c.Tick())
}

func TestLocal_Tick_SameMillisecond(t *testing.T) {
	// Два офлайн-создания подряд в одну миллисекунду должны получить разные токены
	c := NewLocalWithSource(fixedSource(1000))

	first := c.Tick()
	second := c.Tick()

	assert.NotEqual(t, first, second)
	assert.Equal(t, models.LocalToken(1000), first)
	assert.Equal(t, models.LocalToken(1001), second)
}

func TestLocal_Tick_ClockGoesBackwards(t *testing.T) {
	current := int64(5000)
	c := NewLocalWithSource(func() time.Time { return time.UnixMilli(current) })

	assert.Equal(t, models.LocalToken(5000), c.Tick())

	current = 4000
	assert.Equal(t, models.LocalToken(5001), c.Tick(), "Tick should never go backwards")
}

func TestLocal_Tick_Monotonicity(t *testing.T) {
	c := NewLocal()

	var previous models.LocalToken
	for i := 0; i < 100; i++ {
		current := c.Tick()
		assert.Greater(t, current, previous, "Tick should always increase")
		previous = current
	}
}

func TestLocal_Tick_Concurrent(t *testing.T) {
	c := NewLocalWithSource(fixedSource(1))

	const goroutines = 20
	const ticks = 50

	var (
		mu   sync.Mutex
		seen = make(map[models.LocalToken]bool)
		wg   sync.WaitGroup
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < ticks; j++ {
				token := c.Tick()
				mu.Lock()
				seen[token] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*ticks, "All tokens should be unique")
}

func TestLocal_Observe(t *testing.T) {
	c := NewLocalWithSource(fixedSource(100))

	c.Observe(500)
	assert.Equal(t, models.LocalToken(501), c.Tick())

	// Меньшее значение не откатывает часы
	c.Observe(10)
	assert.Equal(t, models.LocalToken(502), c.Tick())
}
