package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/notexe/localhealth/internal/reminder"
	"github.com/stretchr/testify/assert"
)

func sampleReminders() []reminder.Reminder {
	return []reminder.Reminder{
		{ID: 1, MedicineName: "Paracetamol 500mg", Dosage: "1 tablet", Frequency: "daily", Time: "09:00", Days: []string{"monday", "friday"}},
		{ID: 2, MedicineName: "Vitamin D", Dosage: "1 | 2 drops", Frequency: "weekly", Time: "20:00", Completed: true},
	}
}

func TestReminderTable(t *testing.T) {
	table := ReminderTable(sampleReminders())
	lines := strings.Split(strings.TrimSpace(table), "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, "| ID | Time | Medicine | Dosage | Frequency | Days | Status |", lines[0])
	assert.Equal(t, "| 1 | 09:00 | Paracetamol 500mg | 1 tablet | daily | monday, friday | pending |", lines[2])
	assert.Equal(t, `| 2 | 20:00 | Vitamin D | 1 \| 2 drops | weekly | - | done |`, lines[3])
}

func TestNotificationTable(t *testing.T) {
	table := NotificationTable([]reminder.Notification{{
		ID:      "abc",
		Title:   "💊 Time for Aspirin",
		Message: "Take 1 tablet of Aspirin",
		ShownAt: time.Date(2024, time.January, 15, 9, 1, 30, 0, time.UTC),
	}})

	assert.Contains(t, table, "| abc | 09:01 | 💊 Time for Aspirin | Take 1 tablet of Aspirin |")
}

func TestFormatter_Plain(t *testing.T) {
	f := NewFormatter(false)

	assert.False(t, f.Colored())
	assert.Equal(t, "Error: boom", f.FormatError(errors.New("boom")))
	assert.Equal(t, "hello", f.FormatInfo("hello"))
	assert.Equal(t, "[title] body", f.FormatAlert("title", "body"))
	assert.Equal(t, "health > ", f.FormatPrompt())

	rs := sampleReminders()
	assert.Equal(t, "#1 09:00 Paracetamol 500mg - 1 tablet (daily, pending) on monday, friday", f.FormatReminder(rs[0]))
	assert.Equal(t, "#2 20:00 Vitamin D - 1 | 2 drops (weekly, done)", f.FormatReminder(rs[1]))

	assert.Equal(t, "Today: none.", f.FormatReminders("Today", nil))
	assert.Equal(t, "No notifications.", f.FormatNotifications(nil))

	welcome := f.FormatWelcome(3, reminder.PermissionDefault)
	assert.Contains(t, welcome, "Reminders: 3")
	assert.Contains(t, welcome, "Notifications: default")

	help := f.FormatHelp()
	for _, c := range helpCommands {
		assert.Contains(t, help, c[0])
	}
}

func TestFormatReminders_RendersTable(t *testing.T) {
	out := NewFormatter(false).FormatReminders("Upcoming", sampleReminders())

	assert.Contains(t, out, "Upcoming")
	assert.Contains(t, out, "Paracetamol 500mg")
	assert.Contains(t, out, "Vitamin D")
}

func TestRenderMarkdown_Plain(t *testing.T) {
	out := RenderMarkdown("**bold** text", false)
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "text")
}
