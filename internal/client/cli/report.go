package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/stockkeeper/internal/client/notify"
	"github.com/iudanet/stockkeeper/internal/client/reports"
)

// NewReportCommand создает команду report
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show categories, heaviest items and top suppliers (requires connection)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, rootOpts, func(ctx context.Context, c *Cli) error {
				return c.runReport(ctx, category)
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "also list the items of this category")

	return cmd
}

func (c *Cli) runReport(ctx context.Context, category string) error {
	report, err := c.app.Reports.Build(ctx, strings.TrimSpace(category))
	if errors.Is(err, reports.ErrOffline) {
		c.app.Notifier.Notify(notify.Info, "Reports Unavailable", "Reports are only available when online.")
		return reported(err)
	}
	if err != nil {
		return reported(err)
	}

	if c.out.isJSON() {
		return c.out.JSON(report)
	}

	c.io.Println("Categories:")
	if len(report.Categories) == 0 {
		c.io.Println("  (none)")
	}
	for _, name := range report.Categories {
		c.io.Printf("  %s\n", name)
	}

	c.io.Println("")
	c.io.Printf("Heaviest items (top %d):\n", reports.HeaviestLimit)
	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	for i, rec := range report.Heaviest {
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t\n", i+1, rec.Name, strconv.FormatFloat(rec.Weight, 'f', -1, 64))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	c.io.Println("")
	c.io.Printf("Top suppliers (top %d):\n", reports.TopSuppliersLimit)
	tw = tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	for i, s := range report.TopSuppliers {
		fmt.Fprintf(tw, "  %d.\t%s\t%d items\t\n", i+1, s.Name, s.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if report.Category != "" {
		c.io.Println("")
		c.io.Printf("Items in %s:\n", report.Category)
		return c.out.Records(report.CategoryItems)
	}
	return nil
}
