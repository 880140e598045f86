package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/notexe/localhealth/internal/reminder"
	"github.com/notexe/localhealth/internal/ui"
)

// Terminal prints notifications as boxed alerts.
type Terminal struct {
	out       io.Writer
	formatter *ui.Formatter

	mu         sync.Mutex
	permission reminder.Permission
}

// NewTerminal creates a terminal surface. Unless granted is set the user
// has to opt in with RequestPermission first.
func NewTerminal(out io.Writer, formatter *ui.Formatter, granted bool) *Terminal {
	p := reminder.PermissionDefault
	if granted {
		p = reminder.PermissionGranted
	}
	return &Terminal{out: out, formatter: formatter, permission: p}
}

// PermissionStatus reports whether the user has opted in to alerts.
func (t *Terminal) PermissionStatus() reminder.Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

// RequestPermission opts the user in.
func (t *Terminal) RequestPermission(_ context.Context) (reminder.Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.permission = reminder.PermissionGranted
	return t.permission, nil
}

// Show prints an alert box once permission is granted.
func (t *Terminal) Show(_ context.Context, title, body string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.permission != reminder.PermissionGranted {
		return nil
	}
	_, err := fmt.Fprintf(t.out, "\n%s\n", t.formatter.FormatAlert(title, body))
	return err
}
