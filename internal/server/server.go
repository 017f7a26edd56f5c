// Package server собирает HTTP-сервер позиций: REST API, websocket-рассылку
// созданных позиций и хранилище SQLite.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/stockkeeper/internal/server/handlers"
	"github.com/iudanet/stockkeeper/internal/server/middleware"
	"github.com/iudanet/stockkeeper/internal/server/push"
	"github.com/iudanet/stockkeeper/internal/server/storage/sqlite"
)

// Config параметры сервера
type Config struct {
	Addr            string
	DBPath          string
	Version         string
	WriteRate       int           // изменяющих запросов с одного IP за WriteWindow; 0 - без ограничения
	WriteWindow     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		Addr:            ":2518",
		DBPath:          "stockkeeper.db",
		Version:         "dev",
		WriteRate:       60,
		WriteWindow:     time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server HTTP-сервер позиций
type Server struct {
	logger  *slog.Logger
	store   *sqlite.Storage
	hub     *push.Hub
	limiter *middleware.RateLimiter
	handler http.Handler
	cfg     Config
}

// New открывает хранилище и собирает маршруты
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := sqlite.New(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.With("category", "SERVER"),
		store:  store,
		hub:    push.NewHub(logger),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.NewHealthHandler(logger, store, cfg.Version).Health)
	handlers.NewItemsHandler(logger, store, s.hub).Register(mux)
	mux.Handle("GET /ws", s.hub)

	var h http.Handler = mux
	if cfg.WriteRate > 0 && cfg.WriteWindow > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.WriteRate, cfg.WriteWindow, logger)
		h = s.limiter.Middleware(h)
	}
	h = middleware.RecoveryMiddleware(logger)(h)
	h = middleware.LoggingMiddleware(logger, "/health")(h)
	s.handler = middleware.RequestID(h)

	return s, nil
}

// Handler возвращает корневой обработчик со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает cfg.Addr и рассылает позиции до отмены ctx, затем
// корректно останавливает HTTP-сервер.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.hub.Run(gctx)
	})

	g.Go(func() error {
		s.logger.Info("Server listening", "addr", s.cfg.Addr, "version", s.cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close закрывает websocket-подключения и хранилище
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.hub.Close()
	return s.store.Close()
}
