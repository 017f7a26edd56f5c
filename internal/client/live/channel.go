// Package live поддерживает websocket-подключение к серверу и передает
// новые записи, созданные другими клиентами, обработчику приложения.
package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/iudanet/stockkeeper/internal/models"
)

// DefaultReconnectDelay задержка перед повторным подключением
const DefaultReconnectDelay = 3 * time.Second

const readLimit = 1 << 20

// State состояние подключения
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler получает каждую успешно разобранную запись
type Handler func(rec models.Record)

// Channel подключение к серверу push-уведомлений с автоматическим
// переподключением. Обработчик один; SetHandler заменяет предыдущий.
type Channel struct {
	handler  Handler
	logger   *slog.Logger
	dialOpts *websocket.DialOptions
	cancel   context.CancelFunc
	done     chan struct{}
	onState  func(State)
	url      string
	delay    time.Duration
	mu       sync.Mutex
	state    State
}

// Option настраивает Channel
type Option func(*Channel)

// WithReconnectDelay задает задержку переподключения
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithStateHook вызывает fn при каждой смене состояния
func WithStateHook(fn func(State)) Option {
	return func(c *Channel) { c.onState = fn }
}

// NewChannel создает канал для адреса url (ws:// или wss://)
func NewChannel(url string, logger *slog.Logger, opts ...Option) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Channel{
		url:    url,
		delay:  DefaultReconnectDelay,
		logger: logger.With("category", "SOCKET"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect запускает цикл подключения. Повторный вызов, пока цикл работает,
// ничего не делает.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		select {
		case <-c.done:
			// цикл завершился вместе с родительским контекстом
			c.cancel()
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(ctx, c.done)
}

// Close останавливает цикл и дожидается его завершения
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SetHandler устанавливает обработчик записей
func (c *Channel) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// ClearHandler снимает обработчик; записи продолжают разбираться и отбрасываются
func (c *Channel) ClearHandler() {
	c.SetHandler(nil)
}

// State возвращает текущее состояние подключения
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	hook := c.onState
	c.mu.Unlock()

	if changed && hook != nil {
		hook(s)
	}
}

func (c *Channel) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.setState(Disconnected)

	for {
		c.setState(Connecting)

		conn, _, err := websocket.Dial(ctx, c.url, c.dialOpts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("WS Error", "url", c.url, "error", err)
		} else {
			c.setState(Connected)
			c.logger.Info("WS Connected", "url", c.url)
			c.readLoop(ctx, conn)
			_ = conn.CloseNow()
		}

		c.setState(Disconnected)
		if ctx.Err() != nil {
			return
		}

		c.logger.Debug("Resetting WS", "delay", c.delay)
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				!errors.Is(err, context.Canceled) {
				c.logger.Warn("WS connection closed", "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *Channel) dispatch(data []byte) {
	switch f := ParseFrame(data).(type) {
	case RecordFrame:
		c.mu.Lock()
		h := c.handler
		c.mu.Unlock()

		if h != nil {
			h(f.Record)
		}
	case UnparseableFrame:
		c.logger.Warn("WS Parse Error", "error", f.Err, "size", len(f.Raw))
	}
}
