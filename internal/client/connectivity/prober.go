// Package connectivity периодически проверяет доступность сервера и
// записывает результат во флаг связи.
package connectivity

import (
	"context"
	"log/slog"
	"time"

	"github.com/iudanet/stockkeeper/internal/client/state"
)

const maxProbeTimeout = 5 * time.Second

//go:generate moq -out healthchecker_mock.go . HealthChecker

// HealthChecker проверка доступности сервера
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober пишет во флаг связи по результатам проверки здоровья сервера
type Prober struct {
	checker  HealthChecker
	flag     *state.Connectivity
	logger   *slog.Logger
	interval time.Duration
}

// NewProber создает пробер. interval <= 0 отключает периодическую проверку.
func NewProber(checker HealthChecker, flag *state.Connectivity, interval time.Duration, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		checker:  checker,
		flag:     flag,
		interval: interval,
		logger:   logger.With("category", "SERVER"),
	}
}

// Enabled сообщает, включена ли периодическая проверка
func (p *Prober) Enabled() bool {
	return p.interval > 0
}

// Probe выполняет одну проверку и записывает результат во флаг
func (p *Prober) Probe(ctx context.Context) bool {
	timeout := maxProbeTimeout
	if p.interval > 0 && p.interval < timeout {
		timeout = p.interval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.checker.Health(ctx)
	online := err == nil

	if online != p.flag.Online() {
		if online {
			p.logger.Info("Server is reachable, switching to online mode")
		} else {
			p.logger.Warn("Server is unreachable, switching to offline mode", "error", err)
		}
	}
	p.flag.Set(online)

	return online
}

// Run проверяет сервер сразу и затем каждые interval до отмены ctx
func (p *Prober) Run(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	p.Probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
