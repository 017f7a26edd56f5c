package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	syncengine "github.com/iudanet/stockkeeper/internal/client/sync"
)

// NewSyncCommand создает команду sync
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send items recorded offline and refresh the local list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionWith(cmd, rootOpts, false, func(ctx context.Context, c *Cli) error {
				return c.runSync(ctx)
			})
		},
	}
}

func (c *Cli) runSync(ctx context.Context) error {
	if !c.app.State.Connectivity.Online() {
		c.app.Notifier.Notify(notify.Error, "Offline", "Cannot sync while offline.")
		return reported(syncengine.ErrOffline)
	}

	pending := c.app.State.Queue.Len()
	if pending == 0 {
		// очередь пуста: только обновляем список
		records, err := c.app.Data.Refresh(ctx, true)
		if err != nil {
			return reported(err)
		}
		result := &syncengine.FlushResult{Items: len(records)}
		if c.out.isJSON() {
			return c.out.JSON(result)
		}
		c.io.Printf("Nothing to sync. %d items on the server.\n", result.Items)
		return nil
	}

	result, err := c.app.Engine.Flush(ctx)
	if errors.Is(err, syncengine.ErrSyncFailed) {
		return reported(err)
	}
	if err != nil {
		return err
	}

	if c.out.isJSON() {
		return c.out.JSON(result)
	}
	return nil
}

// Status состояние клиента
type Status struct {
	ServerURL string `json:"server_url"`
	Supplier  string `json:"supplier,omitempty"`
	Online    bool   `json:"online"`
	Items     int    `json:"items"`
	Pending   int    `json:"pending"`
}

// NewStatusCommand создает команду status
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connection state, cached items and pending sync queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionWith(cmd, rootOpts, false, func(ctx context.Context, c *Cli) error {
				return c.printStatus()
			})
		},
	}
}

func (c *Cli) status() Status {
	st := c.app.State
	return Status{
		ServerURL: c.cfg.ServerURL,
		Supplier:  st.Settings.SupplierName(),
		Online:    st.Connectivity.Online(),
		Items:     st.Repository.Len(),
		Pending:   st.Queue.Len(),
	}
}

func (c *Cli) printStatus() error {
	s := c.status()
	if c.out.isJSON() {
		return c.out.JSON(s)
	}

	mode := "online"
	if !s.Online {
		mode = "offline"
	}
	c.io.Printf("Server:   %s (%s)\n", s.ServerURL, mode)
	c.io.Printf("Items:    %d\n", s.Items)
	c.io.Printf("Pending:  %d\n", s.Pending)
	if s.Supplier != "" {
		c.io.Printf("Supplier: %s\n", s.Supplier)
	}
	if !s.Online {
		c.io.Println("You are currently offline. Some features may be limited.")
	}
	return nil
}
