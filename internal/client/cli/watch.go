package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	syncengine "github.com/iudanet/stockkeeper/internal/client/sync"
)

const watchHelp = `Commands:
  status     show connection state and pending queue
  list       show cached items
  refresh    fetch the latest list from the server
  sync       send pending items now
  online     switch to online mode
  offline    switch to offline mode
  retry      run the action of the open dialog
  dismiss    close the open dialog
  help       show this help
  quit       exit`

// NewWatchCommand создает команду watch
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay connected: sync automatically and show live item updates",
		Long: `Keep the client running. Items recorded offline are sent as soon as the
server becomes reachable, and items created by other clients are shown as
they arrive. Commands are read from standard input; type "help" for a list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runWatch(ctx)
			})
		},
	}
}

func (c *Cli) runWatch(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.app.Start(ctx)
	c.initialLoad(ctx)

	lines := c.readLines(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.app.RunProber(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return c.shell(gctx, lines)
	})

	return g.Wait()
}

// initialLoad загружает список при запуске. При ошибке показывается диалог
// с повтором.
func (c *Cli) initialLoad(ctx context.Context) {
	if !c.app.State.Connectivity.Online() || c.app.Engine.Flushing() {
		return
	}

	if _, err := c.app.Data.Refresh(ctx, true); err != nil {
		c.app.Errors.HandleCriticalError("Server Connection Error", err, func() {
			c.initialLoad(ctx)
		})
	}
}

// readLines читает команды из IO до конца ввода или отмены ctx.
// ReadInput не прерывается отменой: после выхода из shell горутина остается
// заблокированной до закрытия stdin и завершается вместе с процессом.
func (c *Cli) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)
		for {
			line, err := c.io.ReadInput("> ")
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}

func (c *Cli) shell(ctx context.Context, lines <-chan string) error {
	c.io.Println(`Watching for changes. Type "help" for commands.`)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.execShell(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

// execShell выполняет одну команду. Возвращает true для выхода.
func (c *Cli) execShell(ctx context.Context, line string) bool {
	switch strings.ToLower(line) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		c.io.Println(watchHelp)
	case "status":
		_ = c.printStatus()
		c.io.Printf("Live:     %s\n", c.app.Live.State())
	case "list":
		_ = c.out.Records(c.app.Data.Items())
	case "refresh":
		records, err := c.app.Data.Refresh(ctx, true)
		if err == nil {
			_ = c.out.Records(records)
		}
	case "sync":
		c.syncNow(ctx)
	case "online":
		c.app.SetOnline(true)
		c.io.Println("Online mode.")
	case "offline":
		c.app.SetOnline(false)
		c.io.Println("Offline mode. New items will be queued.")
	case "retry":
		if !c.app.Modal.Act() {
			c.io.Println("Nothing to retry.")
		}
	case "dismiss":
		c.app.Modal.Dismiss()
	default:
		c.io.Printf("Unknown command %q. Type \"help\" for commands.\n", line)
	}
	return false
}

func (c *Cli) syncNow(ctx context.Context) {
	if c.app.State.Queue.Len() == 0 {
		c.io.Println("Nothing to sync.")
		return
	}
	_, err := c.app.Engine.Flush(ctx)
	switch {
	case err == nil, errors.Is(err, syncengine.ErrSyncFailed):
	case errors.Is(err, syncengine.ErrFlushInProgress):
		c.io.Println("Sync is already running.")
	case errors.Is(err, syncengine.ErrOffline):
		c.io.Println("Cannot sync while offline.")
	default:
		c.logger.Warn("Sync failed", "error", err)
	}
}
