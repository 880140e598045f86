package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/notexe/localhealth/internal/reminder"
)

// ReminderTable builds a markdown table of reminders.
func ReminderTable(reminders []reminder.Reminder) string {
	var b strings.Builder
	b.WriteString("| ID | Time | Medicine | Dosage | Frequency | Days | Status |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range reminders {
		status := "pending"
		if r.Completed {
			status = "done"
		}
		days := strings.Join(r.Days, ", ")
		if days == "" {
			days = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			r.ID, escapeCell(r.Time), escapeCell(r.MedicineName), escapeCell(r.Dosage),
			escapeCell(r.Frequency), days, status)
	}
	return b.String()
}

// NotificationTable builds a markdown table of notifications.
func NotificationTable(notifications []reminder.Notification) string {
	var b strings.Builder
	b.WriteString("| ID | Shown | Title | Message |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, n := range notifications {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			n.ID, n.ShownAt.Format("15:04"), escapeCell(n.Title), escapeCell(n.Message))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders markdown for the terminal. Without color it uses
// the plain style; if rendering fails the source is returned as is.
func RenderMarkdown(content string, colored bool) string {
	style := glamour.WithStandardStyle("notty")
	if colored {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(rendered)
}
