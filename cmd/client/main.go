package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/stockkeeper/internal/client/cli"
	"github.com/iudanet/stockkeeper/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(iocli.NewStdio(), cli.BuildInfo{
		Version: Version,
		Date:    BuildDate,
		Commit:  GitCommit,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		// уведомление об ошибке уже выведено
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
