package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/notexe/localhealth/internal/reminder"
)

// Telegram delivers notifications to one chat through the Bot API.
type Telegram struct {
	bot    *bot.Bot
	chatID int64

	mu         sync.RWMutex
	permission reminder.Permission
}

// NewTelegram creates a Telegram surface. Without a token or chat id the
// surface stays denied and never sends anything.
func NewTelegram(token string, chatID int64, opts ...bot.Option) (*Telegram, error) {
	t := &Telegram{chatID: chatID, permission: reminder.PermissionDenied}
	if token == "" || chatID == 0 {
		return t, nil
	}

	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	t.bot = b
	t.permission = reminder.PermissionDefault
	return t, nil
}

// PermissionStatus reports whether the bot may send messages.
func (t *Telegram) PermissionStatus() reminder.Permission {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.permission
}

// RequestPermission verifies the bot token with getMe.
func (t *Telegram) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	if t.bot == nil {
		return reminder.PermissionDenied, nil
	}

	_, err := t.bot.GetMe(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.permission = reminder.PermissionDenied
		return t.permission, fmt.Errorf("telegram bot rejected: %w", err)
	}
	t.permission = reminder.PermissionGranted
	return t.permission, nil
}

// Show sends the title and body as one message to the configured chat.
func (t *Telegram) Show(ctx context.Context, title, body string) error {
	if t.PermissionStatus() != reminder.PermissionGranted {
		return nil
	}

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   title + "\n" + body,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
