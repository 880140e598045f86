package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSurface is a mock implementation of Surface
type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) PermissionStatus() Permission {
	args := m.Called()
	return args.Get(0).(Permission)
}

func (m *MockSurface) RequestPermission(ctx context.Context) (Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).(Permission), args.Error(1)
}

func (m *MockSurface) Show(ctx context.Context, title, body string) error {
	args := m.Called(ctx, title, body)
	return args.Error(0)
}

func at(hour, minute, second int) time.Time {
	return time.Date(2024, time.January, 15, hour, minute, second, 0, time.UTC)
}

func TestCheckDue_ParacetamolScenario(t *testing.T) {
	clock := newFakeClock(at(8, 0, 0))
	svc, _ := newTestService(t, clock)

	r, err := svc.Add(paracetamol())
	require.NoError(t, err)

	clock.Set(at(9, 0, 0))
	emitted := svc.Tick()

	require.Len(t, emitted, 1)
	n := emitted[0]
	assert.Equal(t, r.ID, n.ReminderID)
	assert.Equal(t, "💊 Time for Paracetamol 500mg", n.Title)
	assert.Equal(t, "Take 1 tablet of Paracetamol 500mg", n.Message)
	assert.Equal(t, at(9, 0, 0), n.ShownAt)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, emitted, svc.Notifications())
}

func TestCheckDue_ToleranceWindow(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		due  bool
	}{
		{"two minutes early", at(8, 58, 0), true},
		{"on time", at(9, 0, 30), true},
		{"two minutes late", at(9, 2, 59), true},
		{"three minutes early", at(8, 57, 0), false},
		{"three minutes late", at(9, 3, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
			_, err := svc.Add(paracetamol())
			require.NoError(t, err)

			emitted := svc.CheckDue(tt.now)
			if tt.due {
				assert.Len(t, emitted, 1)
			} else {
				assert.Empty(t, emitted)
			}
		})
	}
}

func TestCheckDue_NoMidnightWrap(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	_, err := svc.Add(Input{MedicineName: "Melatonin", Dosage: "1", Time: "23:59"})
	require.NoError(t, err)

	assert.Empty(t, svc.CheckDue(at(0, 0, 0)))
}

func TestCheckDue_SameMinuteIsDeduplicated(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	assert.Len(t, svc.CheckDue(at(9, 0, 5)), 1)
	assert.Empty(t, svc.CheckDue(at(9, 0, 55)))
	assert.Len(t, svc.Notifications(), 1)
}

// The dedup rule is minute-granular: sampling one due window in three
// different minutes notifies three times.
func TestCheckDue_DistinctMinutesEachNotify(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	r, err := svc.Add(paracetamol())
	require.NoError(t, err)

	for _, now := range []time.Time{at(8, 59, 0), at(9, 0, 0), at(9, 1, 0)} {
		assert.Len(t, svc.CheckDue(now), 1, now.Format("15:04"))
	}

	notifications := svc.Notifications()
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.Equal(t, r.ID, n.ReminderID)
	}
	assert.True(t, notifications[0].ShownAt.Before(notifications[2].ShownAt))
}

func TestCheckDue_SameMinuteOnAnotherDayNotifies(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	require.Len(t, svc.CheckDue(at(9, 0, 0)), 1)
	assert.Len(t, svc.CheckDue(at(9, 0, 0).AddDate(0, 0, 1)), 1)
}

func TestCheckDue_SkipsMalformedTimeAndContinues(t *testing.T) {
	log, hook := test.NewNullLogger()
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithLogger(log))

	broken, err := svc.Add(Input{MedicineName: "Broken", Dosage: "1", Time: "9am"})
	require.NoError(t, err)
	ok, err := svc.Add(paracetamol())
	require.NoError(t, err)

	emitted := svc.CheckDue(at(9, 0, 0))

	require.Len(t, emitted, 1)
	assert.Equal(t, ok.ID, emitted[0].ReminderID)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "skipping reminder with malformed time" && e.Data["reminder_id"] == broken.ID {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestCheckDue_SkipsCompleted(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	r, err := svc.Add(paracetamol())
	require.NoError(t, err)
	svc.MarkCompleted(r.ID)

	assert.Empty(t, svc.CheckDue(at(9, 0, 0)))
}

func TestClearNotification(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)
	_, err = svc.Add(Input{MedicineName: "Ibuprofen", Dosage: "200mg", Time: "09:01"})
	require.NoError(t, err)

	emitted := svc.CheckDue(at(9, 0, 0))
	require.Len(t, emitted, 2)

	svc.ClearNotification(emitted[0].ID)
	svc.ClearNotification(emitted[0].ID)
	svc.ClearNotification("unknown")

	assert.Equal(t, []Notification{emitted[1]}, svc.Notifications())
}

func TestClearAllNotifications(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))

	svc.ClearAllNotifications()
	assert.Empty(t, svc.Notifications())

	_, err := svc.Add(paracetamol())
	require.NoError(t, err)
	require.Len(t, svc.CheckDue(at(9, 0, 0)), 1)

	svc.ClearAllNotifications()
	assert.Empty(t, svc.Notifications())
}

func TestNotificationExpiresAfterRetention(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithRetention(20*time.Millisecond))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	require.Len(t, svc.CheckDue(at(9, 0, 0)), 1)

	assert.Eventually(t, func() bool {
		return len(svc.Notifications()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestExpiryAfterDismissIsNoop(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithRetention(time.Hour))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	emitted := svc.CheckDue(at(9, 0, 0))
	require.Len(t, emitted, 1)
	svc.ClearNotification(emitted[0].ID)

	assert.NotPanics(t, func() { svc.expire(emitted[0].ID) })
	assert.Empty(t, svc.Notifications())
}

func TestCheckDue_DeliversWhenGranted(t *testing.T) {
	surface := new(MockSurface)
	surface.On("PermissionStatus").Return(PermissionGranted)
	surface.On("Show", mock.Anything, "💊 Time for Paracetamol 500mg", "Take 1 tablet of Paracetamol 500mg").Return(nil).Once()

	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	require.Len(t, svc.CheckDue(at(9, 0, 0)), 1)
	svc.Close()

	surface.AssertExpectations(t)
}

func TestCheckDue_SkipsDeliveryWithoutPermission(t *testing.T) {
	surface := new(MockSurface)
	surface.On("PermissionStatus").Return(PermissionDefault)

	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	require.Len(t, svc.CheckDue(at(9, 0, 0)), 1)
	svc.Close()

	surface.AssertNotCalled(t, "Show", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckDue_DeliveryFailureIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	surface := new(MockSurface)
	surface.On("PermissionStatus").Return(PermissionGranted)
	surface.On("Show", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("offline"))

	svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface), WithLogger(log))
	_, err := svc.Add(paracetamol())
	require.NoError(t, err)

	assert.Len(t, svc.CheckDue(at(9, 0, 0)), 1)
	svc.Close()

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to deliver notification", hook.LastEntry().Message)
}

func TestRequestPermission(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		surface := new(MockSurface)
		surface.On("RequestPermission", mock.Anything).Return(PermissionGranted, nil)
		svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface))

		granted, err := svc.RequestPermission(context.Background())
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("denied", func(t *testing.T) {
		surface := new(MockSurface)
		surface.On("RequestPermission", mock.Anything).Return(PermissionDenied, nil)
		svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface))

		granted, err := svc.RequestPermission(context.Background())
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("no surface", func(t *testing.T) {
		svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)))

		granted, err := svc.RequestPermission(context.Background())
		require.NoError(t, err)
		assert.False(t, granted)
		assert.Equal(t, PermissionDenied, svc.PermissionStatus())
	})

	t.Run("granted despite partial failure", func(t *testing.T) {
		log, hook := test.NewNullLogger()
		surface := new(MockSurface)
		surface.On("RequestPermission", mock.Anything).Return(PermissionGranted, errors.New("telegram bot rejected"))
		svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface), WithLogger(log))

		granted, err := svc.RequestPermission(context.Background())
		require.NoError(t, err)
		assert.True(t, granted)

		var warned bool
		for _, e := range hook.AllEntries() {
			if e.Message == "notification permission partially refused" {
				warned = true
			}
		}
		assert.True(t, warned)
	})

	t.Run("error", func(t *testing.T) {
		surface := new(MockSurface)
		surface.On("RequestPermission", mock.Anything).Return(PermissionDenied, errors.New("boom"))
		svc, _ := newTestService(t, newFakeClock(at(7, 0, 0)), WithSurface(surface))

		granted, err := svc.RequestPermission(context.Background())
		assert.Error(t, err)
		assert.False(t, granted)
	})
}
