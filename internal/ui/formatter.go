package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/localhealth/internal/reminder"
)

var (
	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	AlertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("215")). // Orange
			Padding(0, 1)
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// Colored reports whether the formatter emits ANSI styles.
func (f *Formatter) Colored() bool {
	return f.colored
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatSuccess(msg string) string {
	if f.colored {
		return SuccessStyle.Render(msg)
	}
	return msg
}

// FormatAlert renders a notification as a boxed alert.
func (f *Formatter) FormatAlert(title, body string) string {
	if f.colored {
		return AlertStyle.Render(HeaderStyle.Render(title) + "\n" + body)
	}
	return fmt.Sprintf("[%s] %s", title, body)
}

// FormatReminder renders one reminder on a single line.
func (f *Formatter) FormatReminder(r reminder.Reminder) string {
	status := "pending"
	if r.Completed {
		status = "done"
	}

	line := fmt.Sprintf("#%d %s %s - %s (%s, %s)", r.ID, r.Time, r.MedicineName, r.Dosage, r.Frequency, status)
	if len(r.Days) > 0 {
		line += " on " + strings.Join(r.Days, ", ")
	}
	if f.colored && r.Completed {
		return DimStyle.Render(line)
	}
	return line
}

// FormatReminders renders reminders as a table under a heading.
func (f *Formatter) FormatReminders(title string, reminders []reminder.Reminder) string {
	if len(reminders) == 0 {
		return f.FormatInfo(fmt.Sprintf("%s: none.", title))
	}
	return RenderMarkdown("### "+title+"\n\n"+ReminderTable(reminders), f.colored)
}

// FormatNotifications renders the notification queue.
func (f *Formatter) FormatNotifications(notifications []reminder.Notification) string {
	if len(notifications) == 0 {
		return f.FormatInfo("No notifications.")
	}
	return RenderMarkdown("### Notifications\n\n"+NotificationTable(notifications), f.colored)
}

func (f *Formatter) FormatWelcome(reminderCount int, permission reminder.Permission) string {
	title := "LocalHealth • Medicine reminders"
	countLine := fmt.Sprintf("Reminders: %d", reminderCount)
	permLine := fmt.Sprintf("Notifications: %s", permission)
	helpLine := "Type /help for commands"

	if f.colored {
		labelStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Render(strings.Join([]string{
				HeaderStyle.Render(title),
				labelStyle.Render(countLine),
				labelStyle.Render(permLine),
				"",
				DimStyle.Render(helpLine),
			}, "\n"))

		return "\n" + box + "\n"
	}

	// Plain text fallback
	lines := []string{
		"",
		title,
		countLine,
		permLine,
		helpLine,
		"",
	}

	return strings.Join(lines, "\n")
}

var helpCommands = [][2]string{
	{"/add name | dosage | HH:MM [| frequency | days | notes]", "Add a reminder"},
	{"/list", "Upcoming reminders by time of day"},
	{"/today", "Today's schedule"},
	{"/all", "All reminders, including completed"},
	{"/edit <id> field=value ...", "Edit medicine, dosage, time, frequency, days, notes"},
	{"/done <id>", "Mark a reminder as taken"},
	{"/delete <id>", "Delete a reminder"},
	{"/notifications", "Show active notifications"},
	{"/dismiss <id>", "Dismiss a notification"},
	{"/clear", "Dismiss all notifications"},
	{"/permission", "Allow notification delivery"},
	{"/quit", "Exit"},
}

func (f *Formatter) FormatHelp() string {
	if f.colored {
		cmdStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

		lines := []string{"", HeaderStyle.Render("Commands"), ""}
		for _, c := range helpCommands {
			lines = append(lines, "  "+cmdStyle.Render(c[0]))
			lines = append(lines, "      "+descStyle.Render(c[1]))
		}
		lines = append(lines, "", DimStyle.Render("  Ctrl+C or Ctrl+D to exit"), "")

		return strings.Join(lines, "\n")
	}

	lines := []string{"", "Commands:"}
	for _, c := range helpCommands {
		lines = append(lines, fmt.Sprintf("  %s - %s", c[0], c[1]))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		promptStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
		arrowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)
		return promptStyle.Render("health") + arrowStyle.Render(" > ")
	}
	return "health > "
}
