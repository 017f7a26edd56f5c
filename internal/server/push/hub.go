// Package push рассылает созданные позиции всем подключенным websocket-клиентам.
//
// Каждое сообщение - один JSON-объект позиции в формате api.Item.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/iudanet/stockkeeper/pkg/api"
)

const (
	broadcastBuffer = 100
	writeTimeout    = 5 * time.Second
)

// Hub управляет websocket-подключениями и рассылкой
type Hub struct {
	clients   map[*websocket.Conn]struct{}
	broadcast chan api.Item
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	clientsMu sync.RWMutex
}

// NewHub создает hub. Рассылка начинается после Run.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:   make(map[*websocket.Conn]struct{}),
		broadcast: make(chan api.Item, broadcastBuffer),
		logger:    logger.With("category", "SOCKET"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Run рассылает сообщения до отмены ctx или Close
func (h *Hub) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, h.cancel)
	defer stop()

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return nil
		case item := <-h.broadcast:
			h.send(item)
		}
	}
}

// Close останавливает рассылку и закрывает подключения
func (h *Hub) Close() {
	h.cancel()
	h.closeAll()
	h.wg.Wait()
}

// Broadcast ставит позицию в очередь рассылки. При переполнении очереди
// сообщение отбрасывается.
func (h *Hub) Broadcast(item api.Item) {
	select {
	case h.broadcast <- item:
	case <-h.ctx.Done():
	default:
		h.logger.Warn("Broadcast channel full, dropping message", "id", item.ID)
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// ServeHTTP переводит соединение на websocket и регистрирует клиента
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Info("Client connected", "clients", count, "remote_addr", r.RemoteAddr)

	h.wg.Add(1)
	go h.readLoop(conn)
}

func (h *Hub) send(item api.Item) {
	data, err := json.Marshal(item)
	if err != nil {
		h.logger.Error("Failed to marshal message", "error", err)
		return
	}

	h.clientsMu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
	}
	h.clientsMu.RUnlock()

	for _, conn := range clients {
		ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()

		if err != nil {
			h.logger.Warn("Failed to send to client", "error", err)
			h.removeClient(conn)
		}
	}

	h.logger.Debug("Item broadcast", "id", item.ID, "clients", len(clients))
}

// readLoop держит соединение и замечает отключение клиента.
// Сообщения клиентов не обрабатываются.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.wg.Done()
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.logger.Info("Client disconnected", "clients", count)
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]struct{})
	h.clientsMu.Unlock()

	for conn := range clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
	}
}
