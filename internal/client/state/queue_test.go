package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/stockkeeper/internal/client/storage/memory"
	"github.com/iudanet/stockkeeper/internal/models"
)

func TestQueue_FIFO(t *testing.T) {
	s := New(memory.New(discardLogger()), discardLogger())

	s.Queue.Enqueue(laptop())
	s.Queue.Enqueue(mouse())

	assert.Equal(t, []models.Payload{laptop(), mouse()}, s.Queue.Snapshot())
}

func TestQueue_TrimFront(t *testing.T) {
	tests := []struct {
		name string
		trim int
		want []models.Payload
	}{
		{name: "trim nothing", trim: 0, want: []models.Payload{laptop(), mouse()}},
		{name: "trim first", trim: 1, want: []models.Payload{mouse()}},
		{name: "trim all", trim: 2, want: []models.Payload{}},
		{name: "trim more than length", trim: 5, want: []models.Payload{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(memory.New(discardLogger()), discardLogger())
			s.Queue.Enqueue(laptop())
			s.Queue.Enqueue(mouse())

			s.Queue.TrimFront(tt.trim)

			assert.Equal(t, tt.want, s.Queue.Snapshot())
		})
	}
}

func TestQueue_ClearAndObservers(t *testing.T) {
	s := New(memory.New(discardLogger()), discardLogger())

	var (
		mu      sync.Mutex
		lengths []int
	)
	unsubscribe := s.Queue.Subscribe(func(n int) {
		mu.Lock()
		lengths = append(lengths, n)
		mu.Unlock()
	})

	s.Queue.Enqueue(laptop())
	s.Queue.Enqueue(mouse())
	s.Queue.Clear()
	s.Queue.Clear() // пустая очередь: без уведомления

	unsubscribe()
	s.Queue.Enqueue(laptop())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 0}, lengths)
	assert.Equal(t, 1, s.Queue.Len())
}
