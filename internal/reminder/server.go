package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for medicine reminder management.
type Server struct {
	mcpServer *server.MCPServer
	service   *Service
}

// NewServer creates a new Reminder MCP server backed by the given service.
func NewServer(service *Service) *Server {
	s := &Server{
		service: service,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a medicine reminder"),
			mcp.WithString("medicine_name", mcp.Required(), mcp.Description("Medicine name, e.g. Paracetamol 500mg")),
			mcp.WithString("dosage", mcp.Required(), mcp.Description("Dosage, e.g. 1 tablet")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time of day in 24-hour HH:MM format")),
			mcp.WithString("frequency", mcp.Description("once, daily, weekly or monthly (default: daily)")),
			mcp.WithString("days", mcp.Description("Comma-separated weekdays, e.g. monday,wednesday")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders. Upcoming (pending, ordered by time of day) by default"),
			mcp.WithString("status", mcp.Description("upcoming, completed or all (default: upcoming)")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_today_schedule",
			mcp.WithDescription("Get pending reminders scheduled for today's weekday"),
		),
		s.handleTodaySchedule,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's fields"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("medicine_name", mcp.Description("New medicine name")),
			mcp.WithString("dosage", mcp.Description("New dosage")),
			mcp.WithString("time", mcp.Description("New time in HH:MM format")),
			mcp.WithString("frequency", mcp.Description("New frequency")),
			mcp.WithString("days", mcp.Description("New comma-separated weekdays")),
			mcp.WithString("notes", mcp.Description("New notes")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as completed"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_notifications",
			mcp.WithDescription("List active reminder notifications, oldest first"),
		),
		s.handleListNotifications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_notification",
			mcp.WithDescription("Dismiss one notification"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Notification ID")),
		),
		s.handleClearNotification,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_all_notifications",
			mcp.WithDescription("Dismiss all notifications"),
		),
		s.handleClearAllNotifications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("request_notification_permission",
			mcp.WithDescription("Ask the notification surface for permission to deliver alerts"),
		),
		s.handleRequestPermission,
	)
}

func (s *Server) handleAddReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := Input{
		MedicineName: req.GetString("medicine_name", ""),
		Dosage:       req.GetString("dosage", ""),
		Time:         req.GetString("time", ""),
		Frequency:    req.GetString("frequency", ""),
		Days:         splitDays(req.GetString("days", "")),
		Notes:        req.GetString("notes", ""),
	}

	added, err := s.service.Add(in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	return jsonResult(added), nil
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var reminders []Reminder

	switch status := req.GetString("status", "upcoming"); status {
	case "", "upcoming":
		reminders = s.service.Upcoming()
	case "completed":
		for _, r := range s.service.Reminders() {
			if r.Completed {
				reminders = append(reminders, r)
			}
		}
	case "all":
		reminders = s.service.Reminders()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q (use upcoming, completed or all)", status)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(reminders), nil
}

func (s *Server) handleTodaySchedule(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders := s.service.TodaySchedule()
	if len(reminders) == 0 {
		return mcp.NewToolResultText("Nothing scheduled for today."), nil
	}
	return jsonResult(reminders), nil
}

func (s *Server) handleUpdateReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	var fields UpdateFields

	if v := req.GetString("medicine_name", ""); v != "" {
		fields.MedicineName = &v
	}
	if v := req.GetString("dosage", ""); v != "" {
		fields.Dosage = &v
	}
	if v := req.GetString("time", ""); v != "" {
		if _, err := ParseTimeOfDay(v); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.Time = &v
	}
	if v := req.GetString("frequency", ""); v != "" {
		v = strings.ToLower(v)
		if !ValidFrequency(v) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown frequency %q", v)), nil
		}
		fields.Frequency = &v
	}
	if v := req.GetString("days", ""); v != "" {
		days, err := NormalizeDays(splitDays(v))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fields.Days = days
	}
	if v := req.GetString("notes", ""); v != "" {
		fields.Notes = &v
	}

	updated, ok := s.service.Update(id, fields)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %d not found", id)), nil
	}
	return jsonResult(updated), nil
}

func (s *Server) handleCompleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	if _, ok := s.service.MarkCompleted(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %d not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as completed.", id)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(req)
	if errResult != nil {
		return errResult, nil
	}

	s.service.Delete(id)
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}

func (s *Server) handleListNotifications(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notifications := s.service.Notifications()
	if len(notifications) == 0 {
		return mcp.NewToolResultText("No notifications."), nil
	}
	return jsonResult(notifications), nil
}

func (s *Server) handleClearNotification(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	s.service.ClearNotification(id)
	return mcp.NewToolResultText(fmt.Sprintf("Notification %s dismissed.", id)), nil
}

func (s *Server) handleClearAllNotifications(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.service.ClearAllNotifications()
	return mcp.NewToolResultText("All notifications dismissed."), nil
}

func (s *Server) handleRequestPermission(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	granted, err := s.service.RequestPermission(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !granted {
		return mcp.NewToolResultText("Notification permission not granted."), nil
	}
	return mcp.NewToolResultText("Notification permission granted."), nil
}

func requireID(req mcp.CallToolRequest) (int64, *mcp.CallToolResult) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return 0, mcp.NewToolResultError("id is required and must be a positive number")
	}
	return int64(idFloat), nil
}

func splitDays(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}
