package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Frequency values for reminders.
const (
	FrequencyOnce    = "once"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// Reminder represents a scheduled medicine intake.
type Reminder struct {
	ID           int64      `json:"id"`
	MedicineName string     `json:"medicineName"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	Time         string     `json:"time"`
	Days         []string   `json:"days"`
	Notes        string     `json:"notes,omitempty"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// HasDay reports whether the reminder is scheduled on the given weekday name.
// The comparison ignores case.
func (r Reminder) HasDay(day string) bool {
	for _, d := range r.Days {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

func (r Reminder) clone() Reminder {
	c := r
	if r.Days != nil {
		c.Days = append([]string(nil), r.Days...)
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

// Input holds the user-supplied fields of a new reminder.
type Input struct {
	MedicineName string
	Dosage       string
	Frequency    string
	Time         string
	Days         []string
	Notes        string
}

// UpdateFields holds optional fields for a partial update.
type UpdateFields struct {
	MedicineName *string
	Dosage       *string
	Frequency    *string
	Time         *string
	Days         []string
	Notes        *string
	Completed    *bool
	CompletedAt  *time.Time
}

// Notification is one emitted alert for a due reminder.
type Notification struct {
	ID         string    `json:"id"`
	ReminderID int64     `json:"reminderId"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	ShownAt    time.Time `json:"shownAt"`
}

// Permission is the state of a notification surface.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Surface delivers notifications outside the process (desktop, chat bot, terminal).
type Surface interface {
	PermissionStatus() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, title, body string) error
}

// Persister stores the reminder snapshot. Load returns nil data and a nil
// error when nothing has been saved under key yet.
type Persister interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// ValidationError reports a missing or invalid reminder field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
