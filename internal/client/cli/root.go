package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/iudanet/stockkeeper/internal/client/config"
	"github.com/iudanet/stockkeeper/internal/client/iocli"
)

// ValidFormats допустимые форматы вывода
var ValidFormats = []string{"text", "json"}

// BuildInfo сведения о сборке
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// RootOptions глобальные флаги всех команд
type RootOptions struct {
	IO         iocli.IO
	Format     string // "json" | "text"
	ConfigFile string
}

// NewRootCommand создает корневую команду клиента
func NewRootCommand(io iocli.IO, build BuildInfo) *cobra.Command {
	opts := &RootOptions{IO: io}

	cmd := &cobra.Command{
		Use:   "stockkeeper",
		Short: "StockKeeper - offline-first inventory client",
		Long: `StockKeeper records inventory items against a StockKeeper server.

Items added without a connection are stored locally and sent to the
server automatically once it becomes reachable.`,
		Version:       fmt.Sprintf("%s (build date: %s, commit: %s)", build.Version, build.Date, build.Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.SetOut(io)
	cmd.SetErr(io)

	flags := cmd.PersistentFlags()
	config.RegisterFlags(flags)
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: ./stockkeeper.yaml)")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewSupplierCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}
