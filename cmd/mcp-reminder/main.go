// Command mcp-reminder provides an MCP server for medicine reminders.
//
// This server provides tools for creating, listing, completing, and managing
// medicine reminders, and runs the due-check in the background so that
// notifications can be listed and dismissed over MCP.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	REMINDER_DB_PATH  Path to SQLite database (default: ~/.localhealth/reminders.db)
//	LOCALHEALTH_CONFIG  Path to configuration file (default: ~/.localhealth/config.yaml)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/notexe/localhealth/internal/app"
	"github.com/notexe/localhealth/internal/config"
	"github.com/notexe/localhealth/internal/logger"
	"github.com/notexe/localhealth/internal/reminder"
	"github.com/notexe/localhealth/internal/ui"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("LOCALHEALTH_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbPath := os.Getenv("REMINDER_DB_PATH"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	// stdout carries the MCP protocol
	cfg.Notifications.Terminal = false

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	application, err := app.New(cfg, log, nil, ui.NewFormatter(false))
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
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

	s := reminder.NewServer(application.Service)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Medicine reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    REMINDER_DB_PATH    Path to SQLite database file
                        Default: ~/.localhealth/reminders.db
    LOCALHEALTH_CONFIG  Path to configuration file
                        Default: ~/.localhealth/config.yaml
    TELEGRAM_BOT_TOKEN  Telegram bot token for notification delivery
    TELEGRAM_CHAT_ID    Telegram chat to notify

TOOLS:
    add_reminder                     Add a medicine reminder
    list_reminders                   List upcoming, completed or all reminders
    get_today_schedule               Pending reminders for today's weekday
    update_reminder                  Update reminder fields
    complete_reminder                Mark a reminder as completed
    delete_reminder                  Delete a reminder permanently
    list_notifications               Active notifications
    clear_notification               Dismiss one notification
    clear_all_notifications          Dismiss all notifications
    request_notification_permission  Enable notification delivery

CONFIGURATION:
    Add to your MCP client's config:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
