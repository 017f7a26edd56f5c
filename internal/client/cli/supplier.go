package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// NewSupplierCommand создает группу команд supplier
func NewSupplierCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Manage the saved supplier name and view its items",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name>",
		Short: "Save the supplier name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return reported(c.app.Data.SetSupplierName(strings.Join(args, " ")))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved supplier name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				name := c.app.Data.SupplierName()
				if c.out.isJSON() {
					return c.out.JSON(map[string]string{"supplier": name})
				}
				if name == "" {
					c.io.Println("Supplier name is not set.")
					return nil
				}
				c.io.Println(name)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "items",
		Short: "List the saved supplier's items (requires connection)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				records, err := c.app.Data.SupplierItems(ctx)
				if err != nil {
					return reported(err)
				}
				return c.out.Records(records)
			})
		},
	})

	return cmd
}
