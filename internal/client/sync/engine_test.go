package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/state"
	"github.com/iudanet/stockkeeper/internal/client/storage/memory"
	"github.com/iudanet/stockkeeper/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func payload(name string) models.Payload {
	return models.Payload{
		Name:     name,
		Status:   models.StatusAvailable,
		Category: "Electronics",
		Supplier: "Acme",
		Weight:   1,
		Quantity: 1,
	}
}

func newState(t *testing.T, online bool, queued ...models.Payload) *state.State {
	t.Helper()
	st := state.New(memory.New(discardLogger()), discardLogger(), state.WithInitialOnline(online))
	for i, p := range queued {
		st.Queue.Enqueue(p)
		st.Repository.Append(models.NewPendingRecord(models.LocalToken(i+1), p))
	}
	t.Cleanup(st.Close)
	return st
}

func newNotifier() *notify.NotifierMock {
	return &notify.NotifierMock{NotifyFunc: func(notify.Severity, string, string) {}}
}

// echoRemote создает записи с последовательными id и отдает их в ListItems
func echoRemote() *RemoteAPIMock {
	var (
		mu      sync.Mutex
		created []models.Record
	)
	return &RemoteAPIMock{
		CreateItemFunc: func(ctx context.Context, p models.Payload) (models.Record, error) {
			mu.Lock()
			defer mu.Unlock()
			rec := models.Record{ID: models.RemoteID(uint64(len(created) + 1)), Payload: p}
			created = append(created, rec)
			return rec, nil
		},
		ListItemsFunc: func(ctx context.Context) ([]models.Record, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]models.Record(nil), created...), nil
		},
	}
}

func createdNames(remote *RemoteAPIMock) []string {
	var names []string
	for _, call := range remote.CreateItemCalls() {
		names = append(names, call.P.Name)
	}
	return names
}

func TestEngine_Flush_PreservesFIFO(t *testing.T) {
	st := newState(t, true, payload("A"), payload("B"), payload("C"))
	remote := echoRemote()
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	result, err := engine.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Synced)
	assert.Equal(t, []string{"A", "B", "C"}, createdNames(remote))
}

func TestEngine_Flush_FullSuccess(t *testing.T) {
	st := newState(t, true, payload("A"), payload("B"))
	remote := echoRemote()
	notifier := newNotifier()
	engine := NewEngine(remote, st, notifier, discardLogger())
	defer engine.Close()

	result, err := engine.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &FlushResult{Synced: 2, Items: 2}, result)
	assert.Equal(t, 0, st.Queue.Len())

	// Заглушки с локальными id заменены списком сервера
	records := st.Repository.Snapshot()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.ID.IsRemote())
	}

	calls := notifier.NotifyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, notify.Success, calls[0].Severity)
	assert.Equal(t, "Sync Complete", calls[0].Title)
	assert.Equal(t, "Successfully synced 2 items.", calls[0].Detail)
}

func TestEngine_Flush_PartialFailureKeepsQueue(t *testing.T) {
	st := newState(t, true, payload("A"), payload("B"), payload("C"))
	before := st.Repository.Snapshot()

	remote := &RemoteAPIMock{
		CreateItemFunc: func(ctx context.Context, p models.Payload) (models.Record, error) {
			if p.Name == "B" {
				return models.Record{}, errors.New("server unreachable")
			}
			return models.Record{ID: models.RemoteID(1), Payload: p}, nil
		},
		ListItemsFunc: func(ctx context.Context) ([]models.Record, error) {
			t.Fatal("ListItems must not be called after a failed submission")
			return nil, nil
		},
	}
	notifier := newNotifier()
	engine := NewEngine(remote, st, notifier, discardLogger())
	defer engine.Close()

	_, err := engine.Flush(context.Background())

	require.ErrorIs(t, err, ErrSyncFailed)
	assert.Equal(t, []string{"A", "B"}, createdNames(remote), "Submission stops at the first failure")
	assert.Equal(t, []models.Payload{payload("A"), payload("B"), payload("C")}, st.Queue.Snapshot())
	assert.Equal(t, before, st.Repository.Snapshot())
	assert.False(t, engine.Flushing())

	calls := notifier.NotifyCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, notify.Error, calls[0].Severity)
	assert.Equal(t, "Sync Error", calls[0].Title)
	assert.Equal(t, "Failed to sync some offline items. Will retry later.", calls[0].Detail)
}

func TestEngine_Flush_ListFailureAfterDrain(t *testing.T) {
	st := newState(t, true, payload("A"))
	before := st.Repository.Snapshot()

	remote := echoRemote()
	remote.ListItemsFunc = func(ctx context.Context) ([]models.Record, error) {
		return nil, errors.New("timeout")
	}
	notifier := newNotifier()
	engine := NewEngine(remote, st, notifier, discardLogger())
	defer engine.Close()

	result, err := engine.Flush(context.Background())

	require.ErrorIs(t, err, ErrSyncFailed)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, st.Queue.Len(), "Submitted entries are not resubmitted")
	assert.Equal(t, before, st.Repository.Snapshot())
	require.Len(t, notifier.NotifyCalls(), 1)
	assert.Equal(t, "Sync Error", notifier.NotifyCalls()[0].Title)
}

func TestEngine_Flush_Offline(t *testing.T) {
	st := newState(t, false, payload("A"))
	remote := echoRemote()
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	_, err := engine.Flush(context.Background())
	assert.ErrorIs(t, err, ErrOffline)

	engine.Trigger()
	assert.Empty(t, remote.CreateItemCalls())
}

func TestEngine_Flush_EmptyQueue(t *testing.T) {
	st := newState(t, true)
	remote := echoRemote()
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	result, err := engine.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Empty(t, remote.CreateItemCalls())
	assert.Empty(t, remote.ListItemsCalls())
}

func TestEngine_AtMostOneFlush(t *testing.T) {
	st := newState(t, true, payload("A"), payload("B"))

	release := make(chan struct{})
	remote := echoRemote()
	create := remote.CreateItemFunc
	remote.CreateItemFunc = func(ctx context.Context, p models.Payload) (models.Record, error) {
		<-release
		return create(ctx, p)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	require.Eventually(t, engine.Flushing, time.Second, 5*time.Millisecond)

	// Повторные запросы во время отправки отклоняются
	_, err := engine.Flush(context.Background())
	assert.ErrorIs(t, err, ErrFlushInProgress)
	engine.Trigger()
	st.Connectivity.Set(false)
	st.Connectivity.Set(true)

	close(release)

	require.Eventually(t, func() bool {
		return !engine.Flushing() && st.Queue.Len() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"A", "B"}, createdNames(remote), "Each entry is submitted exactly once")
}

func TestEngine_ConnectivityTransitionTriggersFlush(t *testing.T) {
	st := newState(t, false, payload("A"))
	remote := echoRemote()
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	assert.Empty(t, remote.CreateItemCalls())

	st.Connectivity.Set(true)

	require.Eventually(t, func() bool { return st.Queue.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"A"}, createdNames(remote))
}

func TestEngine_EnqueueTriggersFlush(t *testing.T) {
	st := newState(t, true)
	remote := echoRemote()
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	st.Queue.Enqueue(payload("A"))

	require.Eventually(t, func() bool {
		return st.Queue.Len() == 0 && st.Repository.Len() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestEngine_EntriesEnqueuedDuringFlushAreKept(t *testing.T) {
	st := newState(t, true, payload("A"))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	remote := echoRemote()
	create := remote.CreateItemFunc
	remote.CreateItemFunc = func(ctx context.Context, p models.Payload) (models.Record, error) {
		if p.Name == "A" {
			once.Do(func() { close(started) })
			<-release
		}
		return create(ctx, p)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	<-started

	st.Queue.Enqueue(payload("B"))
	close(release)

	require.Eventually(t, func() bool {
		return !engine.Flushing() && st.Queue.Len() == 0 && len(remote.CreateItemCalls()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"A", "B"}, createdNames(remote))
}

func TestEngine_CloseCancelsInFlightFlush(t *testing.T) {
	st := newState(t, true, payload("A"))

	started := make(chan struct{})
	remote := &RemoteAPIMock{
		CreateItemFunc: func(ctx context.Context, p models.Payload) (models.Record, error) {
			close(started)
			<-ctx.Done()
			return models.Record{}, ctx.Err()
		},
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())

	engine.Start(context.Background())
	<-started

	engine.Close()

	assert.False(t, engine.Flushing())
	assert.Equal(t, 1, st.Queue.Len(), "Queue is kept for the next run")

	_, err := engine.Flush(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngine_ConnectivityOffDoesNotCancelFlush(t *testing.T) {
	st := newState(t, true, payload("A"))

	started := make(chan struct{})
	release := make(chan struct{})
	remote := echoRemote()
	create := remote.CreateItemFunc
	remote.CreateItemFunc = func(ctx context.Context, p models.Payload) (models.Record, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return models.Record{}, err
		}
		return create(ctx, p)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	<-started
	st.Connectivity.Set(false)
	close(release)

	require.Eventually(t, func() bool { return !engine.Flushing() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, st.Queue.Len())
}

func TestEngine_PartialFailureResubmitsOnReconnect(t *testing.T) {
	st := newState(t, true, payload("A"), payload("B"))

	var failB atomic.Bool
	failB.Store(true)
	remote := echoRemote()
	create := remote.CreateItemFunc
	remote.CreateItemFunc = func(ctx context.Context, p models.Payload) (models.Record, error) {
		if p.Name == "B" && failB.Load() {
			return models.Record{}, errors.New("server unreachable")
		}
		return create(ctx, p)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	engine.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(remote.CreateItemCalls()) == 2 && !engine.Flushing()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, st.Queue.Len())

	failB.Store(false)
	st.Connectivity.Set(false)
	st.Connectivity.Set(true)

	require.Eventually(t, func() bool {
		return st.Queue.Len() == 0 && !engine.Flushing()
	}, time.Second, 5*time.Millisecond)

	// A уже был принят сервером и отправляется повторно
	assert.Equal(t, []string{"A", "B", "A", "B"}, createdNames(remote))
	assert.Equal(t, 3, st.Repository.Len())
}

func TestEngine_PushDuringFlush(t *testing.T) {
	st := newState(t, true, payload("A"))

	listing := make(chan struct{})
	release := make(chan struct{})
	remote := echoRemote()
	list := remote.ListItemsFunc
	remote.ListItemsFunc = func(ctx context.Context) ([]models.Record, error) {
		close(listing)
		<-release
		return list(ctx)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()

	done := make(chan error, 1)
	go func() {
		_, err := engine.Flush(context.Background())
		done <- err
	}()
	<-listing

	pushedDuring := models.Record{ID: models.RemoteID(99), Payload: payload("Y")}
	require.True(t, st.Repository.AppendIfAbsent(pushedDuring))

	close(release)
	require.NoError(t, <-done)

	// список сервера заменяет репозиторий, запись из push теряется
	assert.False(t, st.Repository.Has(pushedDuring.ID))
	serverItems := []models.Record{{ID: models.RemoteID(1), Payload: payload("A")}}
	assert.Equal(t, serverItems, st.Repository.Snapshot())

	pushedAfter := models.Record{ID: models.RemoteID(100), Payload: payload("Z")}
	require.True(t, st.Repository.AppendIfAbsent(pushedAfter))
	assert.Equal(t, append(serverItems, pushedAfter), st.Repository.Snapshot())
}

func TestEngine_PlaceholdersEnqueuedDuringFlushStayVisible(t *testing.T) {
	st := newState(t, true, payload("A"))

	started := make(chan struct{})
	release := make(chan struct{})
	followUp := make(chan struct{})
	var startOnce, followOnce sync.Once

	remote := echoRemote()
	create := remote.CreateItemFunc
	remote.CreateItemFunc = func(ctx context.Context, p models.Payload) (models.Record, error) {
		switch p.Name {
		case "A":
			startOnce.Do(func() { close(started) })
			<-release
		case "B":
			<-followUp
		}
		return create(ctx, p)
	}
	engine := NewEngine(remote, st, newNotifier(), discardLogger())
	defer engine.Close()
	defer followOnce.Do(func() { close(followUp) })

	done := make(chan error, 1)
	go func() {
		_, err := engine.Flush(context.Background())
		done <- err
	}()
	<-started

	placeholder := models.NewPendingRecord(42, payload("B"))
	st.Queue.Enqueue(payload("B"))
	st.Repository.Append(placeholder)

	close(release)
	require.NoError(t, <-done)

	// первая отправка завершена, вторая ждет: B видна как заглушка
	assert.Equal(t, []models.Record{
		{ID: models.RemoteID(1), Payload: payload("A")},
		placeholder,
	}, st.Repository.Snapshot())
	assert.Equal(t, 1, st.Queue.Len())

	followOnce.Do(func() { close(followUp) })
	require.Eventually(t, func() bool {
		return st.Queue.Len() == 0 && !engine.Flushing()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.Record{
		{ID: models.RemoteID(1), Payload: payload("A")},
		{ID: models.RemoteID(2), Payload: payload("B")},
	}, st.Repository.Snapshot())
}
