package reminder

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *Service) {
	t.Helper()
	svc, _ := newTestService(t, newFakeClock(monday09), opts...)
	return NewServer(svc), svc
}

func TestServer_AddReminder(t *testing.T) {
	s, svc := newTestServer(t)

	out, isErr := callTool(t, s.handleAddReminder, map[string]any{
		"medicine_name": "Paracetamol 500mg",
		"dosage":        "1 tablet",
		"time":          "09:00",
		"days":          "monday, Wednesday",
	})
	require.False(t, isErr, out)

	var added Reminder
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Paracetamol 500mg", added.MedicineName)
	assert.Equal(t, FrequencyDaily, added.Frequency)
	assert.Equal(t, []string{"monday", "wednesday"}, added.Days)
	assert.Len(t, svc.Reminders(), 1)
}

func TestServer_AddReminder_Validation(t *testing.T) {
	s, svc := newTestServer(t)

	out, isErr := callTool(t, s.handleAddReminder, map[string]any{
		"medicine_name": "Paracetamol 500mg",
		"time":          "09:00",
	})
	assert.True(t, isErr)
	assert.Equal(t, "dosage is required", out)
	assert.Empty(t, svc.Reminders())
}

func TestServer_ListReminders(t *testing.T) {
	s, svc := newTestServer(t)

	out, isErr := callTool(t, s.handleListReminders, map[string]any{})
	assert.False(t, isErr)
	assert.Equal(t, "No reminders found.", out)

	late, err := svc.Add(Input{MedicineName: "Late", Dosage: "1", Time: "20:00"})
	require.NoError(t, err)
	early, err := svc.Add(Input{MedicineName: "Early", Dosage: "1", Time: "07:00"})
	require.NoError(t, err)
	svc.MarkCompleted(late.ID)

	out, _ = callTool(t, s.handleListReminders, map[string]any{})
	var upcoming []Reminder
	require.NoError(t, json.Unmarshal([]byte(out), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, early.ID, upcoming[0].ID)

	out, _ = callTool(t, s.handleListReminders, map[string]any{"status": "completed"})
	var completed []Reminder
	require.NoError(t, json.Unmarshal([]byte(out), &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, late.ID, completed[0].ID)

	out, _ = callTool(t, s.handleListReminders, map[string]any{"status": "all"})
	var all []Reminder
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Len(t, all, 2)

	_, isErr = callTool(t, s.handleListReminders, map[string]any{"status": "overdue"})
	assert.True(t, isErr)
}

func TestServer_TodaySchedule(t *testing.T) {
	s, svc := newTestServer(t)

	out, _ := callTool(t, s.handleTodaySchedule, map[string]any{})
	assert.Equal(t, "Nothing scheduled for today.", out)

	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	out, _ = callTool(t, s.handleTodaySchedule, map[string]any{})
	var today []Reminder
	require.NoError(t, json.Unmarshal([]byte(out), &today))
	assert.Len(t, today, 1)
}

func TestServer_UpdateCompleteDelete(t *testing.T) {
	s, svc := newTestServer(t)
	r, err := svc.Add(paracetamol())
	require.NoError(t, err)
	id := float64(r.ID)

	out, isErr := callTool(t, s.handleUpdateReminder, map[string]any{"id": id, "time": "10:30", "days": "friday"})
	require.False(t, isErr, out)
	got, _ := svc.Get(r.ID)
	assert.Equal(t, "10:30", got.Time)
	assert.Equal(t, []string{"friday"}, got.Days)

	_, isErr = callTool(t, s.handleUpdateReminder, map[string]any{"id": id, "time": "25:00"})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleUpdateReminder, map[string]any{"id": id, "frequency": "hourly"})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleUpdateReminder, map[string]any{"id": float64(1), "dosage": "2"})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleCompleteReminder, map[string]any{"id": id})
	assert.False(t, isErr)
	got, _ = svc.Get(r.ID)
	assert.True(t, got.Completed)

	_, isErr = callTool(t, s.handleCompleteReminder, map[string]any{})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleDeleteReminder, map[string]any{"id": id})
	assert.False(t, isErr)
	_, ok := svc.Get(r.ID)
	assert.False(t, ok)
}

func TestServer_Notifications(t *testing.T) {
	s, svc := newTestServer(t)

	out, _ := callTool(t, s.handleListNotifications, map[string]any{})
	assert.Equal(t, "No notifications.", out)

	_, err := svc.Add(paracetamol())
	require.NoError(t, err)
	_, err = svc.Add(Input{MedicineName: "Ibuprofen", Dosage: "200mg", Time: "09:01"})
	require.NoError(t, err)
	emitted := svc.CheckDue(time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC))
	require.Len(t, emitted, 2)

	out, _ = callTool(t, s.handleListNotifications, map[string]any{})
	var listed []Notification
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 2)

	_, isErr := callTool(t, s.handleClearNotification, map[string]any{"id": emitted[0].ID})
	assert.False(t, isErr)
	assert.Len(t, svc.Notifications(), 1)

	_, isErr = callTool(t, s.handleClearNotification, map[string]any{})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleClearAllNotifications, map[string]any{})
	assert.False(t, isErr)
	assert.Empty(t, svc.Notifications())
}

func TestServer_RequestPermission(t *testing.T) {
	surface := new(MockSurface)
	surface.On("RequestPermission", mock.Anything).Return(PermissionGranted, nil)
	s, _ := newTestServer(t, WithSurface(surface))

	out, isErr := callTool(t, s.handleRequestPermission, map[string]any{})
	assert.False(t, isErr)
	assert.Equal(t, "Notification permission granted.", out)
}
