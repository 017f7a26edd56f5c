package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iudanet/stockkeeper/internal/client/data"
	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/models"
	"github.com/iudanet/stockkeeper/internal/validation"
)

const offlineEmptyMessage = "You are offline and no data is cached."

// itemFlags поля позиции, заданные флагами
type itemFlags struct {
	input       validation.ItemInput
	interactive bool
}

func (f *itemFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.input.Name, "name", "", "item name")
	flags.StringVar(&f.input.Status, "status", "", "status (available|reserved|out of stock)")
	flags.StringVar(&f.input.Quantity, "quantity", "", "quantity")
	flags.StringVar(&f.input.Category, "category", "", "category")
	flags.StringVar(&f.input.Supplier, "supplier", "", "supplier (default: saved supplier name)")
	flags.StringVar(&f.input.Weight, "weight", "", "unit weight")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "prompt for missing fields")
}

// NewListCommand создает команду list
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items (cached locally, including items waiting for sync)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx, refresh)
			})
		},
	}
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "fetch the latest list from the server")

	return cmd
}

func (c *Cli) runList(ctx context.Context, refresh bool) error {
	records, err := c.app.Data.Refresh(ctx, refresh)
	if len(records) == 0 && !c.app.State.Connectivity.Online() && !c.out.isJSON() {
		c.io.Println(offlineEmptyMessage)
		return nil
	}
	if printErr := c.out.Records(records); printErr != nil {
		return printErr
	}
	if err != nil && !errors.Is(err, data.ErrOffline) {
		return reported(err)
	}
	return nil
}

// NewAddCommand создает команду add
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	f := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new item (queued locally when offline)",
		Example: `  stockkeeper add --name Laptop --quantity 2 --category Electronics --supplier Acme --weight 1.5
  stockkeeper add -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runAdd(ctx, f)
			})
		},
	}
	f.register(cmd)

	return cmd
}

func (c *Cli) runAdd(ctx context.Context, f *itemFlags) error {
	in := f.input
	if in.Supplier == "" {
		in.Supplier = c.app.Data.SupplierName()
	}
	if f.interactive {
		if err := c.promptItem(&in); err != nil {
			return err
		}
	}

	p, err := c.parseItem(in)
	if err != nil {
		return err
	}

	rec, err := c.app.Data.AddItem(ctx, p)
	if err != nil {
		return reported(err)
	}
	if c.out.isJSON() {
		return c.out.JSON(rec)
	}
	return nil
}

// promptItem запрашивает незаполненные поля
func (c *Cli) promptItem(in *validation.ItemInput) error {
	fields := []struct {
		dst    *string
		prompt string
	}{
		{&in.Name, "Name: "},
		{&in.Status, "Status (available, reserved, out of stock) [available]: "},
		{&in.Quantity, "Quantity: "},
		{&in.Category, "Category: "},
		{&in.Supplier, "Supplier: "},
		{&in.Weight, "Weight: "},
	}

	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		value, err := c.io.ReadInput(f.prompt)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		*f.dst = value
	}
	return nil
}

func (c *Cli) parseItem(in validation.ItemInput) (models.Payload, error) {
	p, err := validation.ParseItem(in)
	if err == nil {
		return p, nil
	}

	if errors.Is(err, validation.ErrMissingFields) {
		c.app.Notifier.Notify(notify.Error, "Missing Fields", "Please fill in all details")
	} else {
		c.app.Notifier.Notify(notify.Error, "Error", err.Error())
	}
	return models.Payload{}, reported(err)
}

// NewGetCommand создает команду get
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show item details (fetched from the server when online)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseRecordID(args[0])
			if err != nil {
				return err
			}
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				rec, err := c.getItem(ctx, id)
				if err != nil {
					return err
				}
				return c.out.Record(rec)
			})
		},
	}
}

func (c *Cli) getItem(ctx context.Context, id models.RecordID) (models.Record, error) {
	rec, err := c.app.Data.GetItem(ctx, id)
	if err != nil && !errors.Is(err, data.ErrNotFound) {
		// ошибка сервера уже показана
		return rec, reported(err)
	}
	return rec, err
}

// NewUpdateCommand создает команду update
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	f := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an item on the server (requires connection)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseRecordID(args[0])
			if err != nil {
				return err
			}
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runUpdate(ctx, id, f)
			})
		},
	}
	f.register(cmd)

	return cmd
}

func (c *Cli) runUpdate(ctx context.Context, id models.RecordID, f *itemFlags) error {
	current, err := c.getItem(ctx, id)
	if err != nil {
		return err
	}

	// незаданные поля берутся из текущей версии
	in := f.input
	for _, fill := range []struct {
		dst   *string
		value string
	}{
		{&in.Name, current.Name},
		{&in.Status, current.Status},
		{&in.Quantity, strconv.FormatInt(current.Quantity, 10)},
		{&in.Category, current.Category},
		{&in.Supplier, current.Supplier},
		{&in.Weight, strconv.FormatFloat(current.Weight, 'f', -1, 64)},
	} {
		if *fill.dst == "" {
			*fill.dst = fill.value
		}
	}

	p, err := c.parseItem(in)
	if err != nil {
		return err
	}

	rec, err := c.app.Data.UpdateItem(ctx, id, p)
	if err != nil {
		return reported(err)
	}
	if c.out.isJSON() {
		return c.out.JSON(rec)
	}
	return nil
}

// NewDeleteCommand создает команду delete
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item on the server (requires connection)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := models.ParseRecordID(args[0])
			if err != nil {
				return err
			}
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runDelete(ctx, id, yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func (c *Cli) runDelete(ctx context.Context, id models.RecordID, yes bool) error {
	if !yes {
		if rec, ok := c.app.State.Repository.Get(id); ok {
			c.io.Printf("About to delete: %s (%s)\n", rec.Name, rec.Category)
		}
		confirm, err := c.io.Confirm("Are you sure you want to delete this item?")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !confirm {
			c.io.Println("Deletion cancelled.")
			return nil
		}
	}

	if err := c.app.Data.DeleteItem(ctx, id); err != nil {
		return reported(err)
	}
	return nil
}
