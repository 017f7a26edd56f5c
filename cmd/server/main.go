package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/stockkeeper/internal/logging"
	"github.com/iudanet/stockkeeper/internal/server"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg := server.DefaultConfig()
	cfg.Version = Version

	showVersion := flag.Bool("version", false, "Show version information")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.IntVar(&cfg.WriteRate, "write-rate", cfg.WriteRate, "Write requests per IP per window (0 disables)")
	flag.DurationVar(&cfg.WriteWindow, "write-window", cfg.WriteWindow, "Rate limit window")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text, json")
	logFile := flag.String("log-file", "", "Log file (default stderr)")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(cfg, logging.Options{Level: *logLevel, Format: *logFormat, File: *logFile, Output: os.Stderr}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg server.Config, logOpts logging.Options) error {
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Failed to close server", "error", err)
		}
	}()

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("StockKeeper Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
