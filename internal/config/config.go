package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const envPrefix = "LOCALHEALTH_"

type Config struct {
	Storage       StorageConfig       `koanf:"storage"`
	Scheduler     SchedulerConfig     `koanf:"scheduler"`
	Digest        DigestConfig        `koanf:"digest"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Telegram      TelegramConfig      `koanf:"telegram"`
	UI            UIConfig            `koanf:"ui"`
	Log           LogConfig           `koanf:"log"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"` // sqlite or memory
	Path   string `koanf:"path"`
	Key    string `koanf:"key"`
}

type SchedulerConfig struct {
	Interval         int `koanf:"interval"`          // Seconds between due-checks
	ToleranceMinutes int `koanf:"tolerance_minutes"` // Half-width of the due window
	Retention        int `koanf:"retention"`         // Seconds a notification stays queued
}

type DigestConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"` // Standard 5-field cron expression
}

type NotificationsConfig struct {
	Terminal        bool `koanf:"terminal"`
	TerminalGranted bool `koanf:"terminal_granted"` // Skip the opt-in for terminal alerts
	RequestOnStart  bool `koanf:"request_on_start"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text or json
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// LOCALHEALTH_SCHEDULER__INTERVAL -> scheduler.interval
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("telegram.bot_token", token)
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Storage.Path = expandPath(cfg.Storage.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver: %s (supported: sqlite, memory)", c.Storage.Driver)
	}

	if c.Storage.Key == "" {
		return fmt.Errorf("storage key is required")
	}

	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %d", c.Scheduler.Interval)
	}

	if c.Scheduler.ToleranceMinutes < 0 {
		return fmt.Errorf("scheduler tolerance must not be negative")
	}

	if c.Scheduler.Retention <= 0 {
		return fmt.Errorf("notification retention must be positive")
	}

	if c.Digest.Enabled {
		if _, err := cron.ParseStandard(c.Digest.Schedule); err != nil {
			return fmt.Errorf("invalid digest schedule %q: %w", c.Digest.Schedule, err)
		}
	}

	if c.Telegram.ChatID != "" {
		if _, err := c.TelegramChatID(); err != nil {
			return err
		}
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s (supported: text, json)", c.Log.Format)
	}

	return nil
}

// Interval returns the due-check period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Scheduler.Interval) * time.Second
}

// RetentionPeriod returns how long notifications stay queued.
func (c *Config) RetentionPeriod() time.Duration {
	return time.Duration(c.Scheduler.Retention) * time.Second
}

// TelegramEnabled reports whether both the bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// TelegramChatID parses the configured chat id.
func (c *Config) TelegramChatID() (int64, error) {
	id, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat_id %q: %w", c.Telegram.ChatID, err)
	}
	return id, nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
