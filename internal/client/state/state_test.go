package state

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/client/storage"
	"github.com/iudanet/stockkeeper/internal/client/storage/memory"
	"github.com/iudanet/stockkeeper/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func laptop() models.Payload {
	return models.Payload{Name: "Laptop", Status: models.StatusAvailable, Category: "Electronics", Supplier: "Acme", Weight: 1.5, Quantity: 2}
}

func mouse() models.Payload {
	return models.Payload{Name: "Mouse", Status: models.StatusAvailable, Category: "Electronics", Supplier: "Acme", Weight: 0.1, Quantity: 1}
}

func TestState_Defaults(t *testing.T) {
	s := New(memory.New(discardLogger()), discardLogger())

	assert.True(t, s.Connectivity.Online())
	assert.Empty(t, s.Repository.Snapshot())
	assert.Equal(t, 0, s.Queue.Len())
	assert.Equal(t, "", s.Settings.SupplierName())

	offline := New(memory.New(discardLogger()), discardLogger(), WithInitialOnline(false))
	assert.False(t, offline.Connectivity.Online())
}

func TestState_PersistsAndHydrates(t *testing.T) {
	ctx := context.Background()
	store := memory.New(discardLogger())

	s := New(store, discardLogger())
	s.Repository.Append(models.Record{ID: models.RemoteID(1), Payload: laptop()})
	s.Repository.Append(models.NewPendingRecord(1000, mouse()))
	s.Queue.Enqueue(mouse())
	s.Settings.SetSupplierName("Acme")
	s.Close()

	restored := New(store, discardLogger())
	restored.Hydrate(ctx)

	assert.Equal(t, s.Repository.Snapshot(), restored.Repository.Snapshot())
	assert.Equal(t, []models.Payload{mouse()}, restored.Queue.Snapshot())
	assert.Equal(t, "Acme", restored.Settings.SupplierName())
	assert.Equal(t, models.LocalToken(1000), restored.Repository.MaxPendingToken())
}

func TestState_HydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New(discardLogger())
	require.NoError(t, store.Save(ctx, storage.KeyItems, []models.Record{{ID: models.RemoteID(3), Payload: laptop()}}))
	require.NoError(t, store.Save(ctx, storage.KeyOfflineQueue, []models.Payload{mouse()}))

	s := New(store, discardLogger())
	s.Hydrate(ctx)
	first := s.Repository.Snapshot()
	s.Hydrate(ctx)

	assert.Equal(t, first, s.Repository.Snapshot())
	assert.Equal(t, 1, s.Queue.Len())
}

func TestState_HydrateKeepsDefaultsForEmptyValues(t *testing.T) {
	ctx := context.Background()
	store := memory.New(discardLogger())
	require.NoError(t, store.Save(ctx, storage.KeySupplierName, ""))
	require.NoError(t, store.Save(ctx, storage.KeyItems, nil))

	s := New(store, discardLogger())
	s.Hydrate(ctx)

	assert.Equal(t, "", s.Settings.SupplierName())
	assert.NotNil(t, s.Repository.Snapshot())
	assert.Empty(t, s.Repository.Snapshot())
}

func TestState_PersistFailureKeepsMemoryState(t *testing.T) {
	var (
		mu       sync.Mutex
		failures []string
	)
	store := &storage.KVStoreMock{
		SaveFunc: func(ctx context.Context, key string, value any) error {
			return storage.NewStorageError("save", key, errors.New("disk full"))
		},
	}

	s := New(store, discardLogger(), WithPersistErrorHandler(func(key string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, key)
	}))

	s.Repository.Append(models.Record{ID: models.RemoteID(1), Payload: laptop()})
	s.Wait()

	assert.Equal(t, 1, s.Repository.Len(), "In-memory state must not roll back")
	mu.Lock()
	assert.Equal(t, []string{storage.KeyItems}, failures)
	mu.Unlock()
}

func TestState_LatestSnapshotWins(t *testing.T) {
	store := memory.New(discardLogger())
	s := New(store, discardLogger())

	for i := 1; i <= 50; i++ {
		s.Repository.Append(models.Record{ID: models.RemoteID(uint64(i)), Payload: laptop()})
	}
	s.Wait()

	raw, ok := store.Raw(storage.KeyItems)
	require.True(t, ok)

	var persisted []models.Record
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Len(t, persisted, 50)
	assert.Equal(t, models.RemoteID(50), persisted[49].ID)
}
