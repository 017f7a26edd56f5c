// Package cli реализует команды клиента поверх app.App.
package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/stockkeeper/internal/client/app"
	"github.com/iudanet/stockkeeper/internal/client/config"
	"github.com/iudanet/stockkeeper/internal/client/iocli"
	"github.com/iudanet/stockkeeper/internal/client/notify"
	syncengine "github.com/iudanet/stockkeeper/internal/client/sync"
	"github.com/iudanet/stockkeeper/internal/logging"
)

// Cli одна сессия клиента: настройки, логгер и собранное приложение
type Cli struct {
	io       iocli.IO
	app      *app.App
	out      *formatter
	logger   *slog.Logger
	closeLog func() error
	cfg      *config.Config
}

// open загружает настройки и собирает приложение
func open(ctx context.Context, cmd *cobra.Command, opts *RootOptions) (*Cli, error) {
	cfg, err := config.Load(viper.New(), cmd.Flags(), opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	console := notify.NewConsole(opts.IO, logger)
	modal := notify.NewModal()
	modal.Subscribe(console.ShowModal)

	a, err := app.New(ctx, app.Options{
		Config:   *cfg,
		Logger:   logger,
		Notifier: console,
		Modal:    modal,
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	return &Cli{
		io:       opts.IO,
		app:      a,
		out:      &formatter{format: opts.Format, w: opts.IO},
		logger:   logger.With("category", "CLI"),
		closeLog: closeLog,
		cfg:      cfg,
	}, nil
}

// Close останавливает приложение и закрывает лог
func (c *Cli) Close() error {
	err := c.app.Close()
	if logErr := c.closeLog(); logErr != nil && err == nil {
		err = logErr
	}
	return err
}

// runSession выполняет разовую команду: проверка связи, отправка очереди,
// затем fn.
func runSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, c *Cli) error) error {
	return runSessionWith(cmd, opts, true, fn)
}

func runSessionWith(cmd *cobra.Command, opts *RootOptions, autoSync bool, fn func(ctx context.Context, c *Cli) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := open(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	c.app.ProbeOnce(ctx)
	if autoSync {
		c.syncPending(ctx)
	}

	return fn(ctx, c)
}

// syncPending отправляет очередь до выполнения команды. Ошибки уже показаны
// пользователю движком синхронизации.
func (c *Cli) syncPending(ctx context.Context) {
	_, err := c.app.SyncPending(ctx)
	if err == nil || errors.Is(err, syncengine.ErrSyncFailed) {
		return
	}
	c.logger.Warn("Pending items were not synced", "error", err)
}
