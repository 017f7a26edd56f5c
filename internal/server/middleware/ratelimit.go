package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/stockkeeper/pkg/api"
)

// RateLimiter ограничивает частоту запросов по ключу (IP клиента) алгоритмом
// token bucket: до rate запросов подряд, затем пополнение на rate токенов
// за window.
type RateLimiter struct {
	buckets map[string]*bucket
	logger  *slog.Logger
	now     func() time.Time
	stopC   chan struct{}
	stopped sync.Once
	rate    float64
	window  time.Duration
	mu      sync.Mutex
}

type bucket struct {
	updated time.Time
	tokens  float64
}

// NewRateLimiter создает limiter и запускает очистку неактивных ключей.
// Остановить очистку - Stop.
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		logger:  logger,
		now:     time.Now,
		stopC:   make(chan struct{}),
		rate:    float64(rate),
		window:  window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stopC:
			return
		}
	}
}

// evictIdle удаляет полностью пополненные бакеты
func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.updated) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}

// Stop останавливает очистку. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.stopC) })
}

// Allow расходует токен ключа; false, если токенов нет
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.rate, updated: now}
		rl.buckets[key] = b
	} else if elapsed := now.Sub(b.updated); elapsed > 0 {
		b.tokens = min(rl.rate, b.tokens+rl.rate*elapsed.Seconds()/rl.window.Seconds())
		b.updated = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware ограничивает изменяющие запросы (POST, PUT, PATCH, DELETE).
// Чтение и websocket-подключения не ограничиваются.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if !rl.Allow(key) {
			rl.logger.Warn("Rate limit exceeded",
				"ip", key,
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", retryAfter(rl.window, rl.rate))
			writeError(w, http.StatusTooManyRequests, api.ErrorResponse{
				Error: "rate limit exceeded, please try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func retryAfter(window time.Duration, rate float64) string {
	secs := int(window.Seconds()/rate + 0.999)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP берет первый адрес из X-Forwarded-For, затем X-Real-IP, затем
// хост из RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
