// Command localhealth is an interactive medicine reminder.
//
// It keeps reminders in a local SQLite database, checks them every minute
// and shows a notification when one is due.
//
// Usage:
//
//	./localhealth [--config path] [--no-color] [--memory]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/localhealth/internal/app"
	"github.com/notexe/localhealth/internal/config"
	"github.com/notexe/localhealth/internal/logger"
	"github.com/notexe/localhealth/internal/repl"
	"github.com/notexe/localhealth/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	memory := flag.Bool("memory", false, "Keep reminders in memory only")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Apply CLI flag overrides
	if *noColor {
		cfg.UI.ColoredOutput = false
	}
	if *memory {
		cfg.Storage.Driver = "memory"
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)

	rl, err := repl.NewReadline(formatter.FormatPrompt())
	if err != nil {
		return fmt.Errorf("failed to create REPL: %w", err)
	}
	log.SetOutput(rl.Stderr())

	application, err := app.New(cfg, log, rl.Stdout(), formatter)
	if err != nil {
		rl.Close()
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application.Start(ctx)

	go func() {
		if err := application.RunBackground(ctx); err != nil {
			log.WithError(err).Error("background jobs stopped")
		}
	}()

	replInstance := repl.New(application.Service, rl, formatter)
	go func() {
		<-ctx.Done()
		replInstance.Stop()
	}()

	return replInstance.Start(ctx)
}
