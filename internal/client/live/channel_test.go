package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/stockkeeper/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pushServer отправляет frames каждому подключению и закрывает его,
// если closeAfter задан
func pushServer(t *testing.T, frames []string, closeAfter bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		connections.Add(1)

		ctx := r.Context()
		for _, f := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}

		if closeAfter {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		// ждем, пока клиент не отключится
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	return server, &connections
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

type collector struct {
	records []models.Record
	mu      sync.Mutex
}

func (c *collector) handle(rec models.Record) {
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()
}

func (c *collector) snapshot() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Record(nil), c.records...)
}

func TestChannel_DeliversRecordFrames(t *testing.T) {
	server, _ := pushServer(t, []string{
		`{"id":1,"name":"Laptop","category":"Electronics","status":"available"}`,
		`garbage`,
		`{"id":2,"name":"Mouse"}`,
	}, false)

	ch := NewChannel(wsURL(server), discardLogger())
	c := &collector{}
	ch.SetHandler(c.handle)

	ch.Connect(context.Background())
	defer ch.Close()

	require.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	records := c.snapshot()
	assert.Equal(t, models.RemoteID(1), records[0].ID)
	assert.Equal(t, models.RemoteID(2), records[1].ID)
	assert.Equal(t, Connected, ch.State())
}

func TestChannel_Reconnects(t *testing.T) {
	server, connections := pushServer(t, []string{`{"id":1,"name":"Laptop"}`}, true)

	ch := NewChannel(wsURL(server), discardLogger(), WithReconnectDelay(20*time.Millisecond))
	c := &collector{}
	ch.SetHandler(c.handle)

	ch.Connect(context.Background())
	defer ch.Close()

	require.Eventually(t, func() bool { return connections.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	// дубликаты передаются обработчику; дедупликация выполняется приложением
	assert.GreaterOrEqual(t, len(c.snapshot()), 2)
}

func TestChannel_RetriesWhenServerIsDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server)
	server.Close()

	var (
		mu     sync.Mutex
		states []State
	)
	ch := NewChannel(url, discardLogger(),
		WithReconnectDelay(10*time.Millisecond),
		WithStateHook(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)

	ch.Connect(context.Background())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) >= 4
	}, 2*time.Second, 10*time.Millisecond)

	ch.Close()
	assert.Equal(t, Disconnected, ch.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Connecting, Disconnected, Connecting, Disconnected}, states[:4])
}

func TestChannel_ConnectIsIdempotent(t *testing.T) {
	server, connections := pushServer(t, nil, false)

	ch := NewChannel(wsURL(server), discardLogger())
	ch.Connect(context.Background())
	ch.Connect(context.Background())
	defer ch.Close()

	require.Eventually(t, func() bool { return ch.State() == Connected }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), connections.Load())
}

func TestChannel_CloseStopsReconnectLoop(t *testing.T) {
	server, connections := pushServer(t, nil, true)

	ch := NewChannel(wsURL(server), discardLogger(), WithReconnectDelay(time.Hour))
	ch.Connect(context.Background())

	require.Eventually(t, func() bool { return connections.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		ch.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the pending reconnect")
	}
	assert.Equal(t, Disconnected, ch.State())

	// Close без Connect безопасен
	ch.Close()
}

func TestChannel_ClearHandler(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		<-release
		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"id":1,"name":"Laptop"}`))
		_, _, _ = conn.Read(r.Context())
	}))
	defer server.Close()

	ch := NewChannel(wsURL(server), discardLogger())
	c := &collector{}
	ch.SetHandler(c.handle)
	ch.ClearHandler()

	ch.Connect(context.Background())
	require.Eventually(t, func() bool { return ch.State() == Connected }, 2*time.Second, 10*time.Millisecond)
	close(release)

	time.Sleep(50 * time.Millisecond)
	ch.Close()
	assert.Empty(t, c.snapshot())
}
