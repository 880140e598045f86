package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tick runs the due-check against the service clock.
func (s *Service) Tick() []Notification {
	return s.CheckDue(s.now())
}

// CheckDue emits a notification for every pending reminder whose time of
// day lies within the tolerance of now. A reminder that already has a
// notification shown in the same calendar minute is skipped, so ticks in
// different minutes of one due window each notify again.
func (s *Service) CheckDue(now time.Time) []Notification {
	s.mu.Lock()

	local := now.In(s.loc)
	current := local.Hour()*60 + local.Minute()

	var emitted []Notification
	for _, r := range s.reminders {
		if r.Completed {
			continue
		}

		minutes, err := ParseTimeOfDay(r.Time)
		if err != nil {
			s.log.WithError(err).WithField("reminder_id", r.ID).Warn("skipping reminder with malformed time")
			continue
		}
		if abs(minutes-current) > s.tolerance {
			continue
		}
		if s.shownInMinuteLocked(r.ID, now) {
			continue
		}

		n := Notification{
			ID:         uuid.NewString(),
			ReminderID: r.ID,
			Title:      fmt.Sprintf("💊 Time for %s", r.MedicineName),
			Message:    fmt.Sprintf("Take %s of %s", r.Dosage, r.MedicineName),
			ShownAt:    now,
		}
		s.notifications = append(s.notifications, n)
		s.scheduleExpiryLocked(n.ID)
		emitted = append(emitted, n)

		s.log.WithField("reminder_id", r.ID).WithField("notification_id", n.ID).Info("reminder due")
	}

	deliver := len(emitted) > 0 && s.surface != nil && !s.closed &&
		s.surface.PermissionStatus() == PermissionGranted
	if deliver {
		s.deliveries.Add(len(emitted))
	}
	s.mu.Unlock()

	if deliver {
		for _, n := range emitted {
			go s.deliver(n)
		}
	}
	return emitted
}

func (s *Service) shownInMinuteLocked(reminderID int64, now time.Time) bool {
	for _, n := range s.notifications {
		if n.ReminderID == reminderID && sameMinute(n.ShownAt, now, s.loc) {
			return true
		}
	}
	return false
}

func (s *Service) scheduleExpiryLocked(id string) {
	if s.closed {
		return
	}
	s.expiries[id] = time.AfterFunc(s.retention, func() {
		s.expire(id)
	})
}

// expire drops a notification once its retention ends. It may have been
// dismissed already.
func (s *Service) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expiries, id)
	if s.removeLocked(id) {
		s.log.WithField("notification_id", id).Debug("notification expired")
	}
}

// deliver forwards one notification to the surface. The caller has
// already counted it in s.deliveries.
func (s *Service) deliver(n Notification) {
	defer s.deliveries.Done()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := s.surface.Show(ctx, n.Title, n.Message); err != nil {
		s.log.WithError(err).WithField("notification_id", n.ID).Warn("failed to deliver notification")
	}
}

// Notifications returns the queued notifications, oldest first.
func (s *Service) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Notification(nil), s.notifications...)
}

// ClearNotification dismisses one notification. Unknown ids are ignored.
func (s *Service) ClearNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.expiries[id]; ok {
		t.Stop()
		delete(s.expiries, id)
	}
	s.removeLocked(id)
}

// ClearAllNotifications empties the queue.
func (s *Service) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopExpiriesLocked()
	s.notifications = nil
}

// PermissionStatus reports the surface permission; without a surface it is denied.
func (s *Service) PermissionStatus() Permission {
	if s.surface == nil {
		return PermissionDenied
	}
	return s.surface.PermissionStatus()
}

// RequestPermission asks the surface for permission to show notifications
// and reports whether it is now granted. An error is returned only when
// the request failed and nothing was granted.
func (s *Service) RequestPermission(ctx context.Context) (bool, error) {
	if s.surface == nil {
		return false, nil
	}

	p, err := s.surface.RequestPermission(ctx)
	if err != nil {
		if p != PermissionGranted {
			return false, fmt.Errorf("failed to request notification permission: %w", err)
		}
		s.log.WithError(err).Warn("notification permission partially refused")
	}
	s.log.WithField("permission", p).Info("notification permission updated")
	return p == PermissionGranted, nil
}

// Close stops pending expiry timers and waits for in-flight deliveries.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopExpiriesLocked()
	s.mu.Unlock()

	s.deliveries.Wait()
}

func (s *Service) stopExpiriesLocked() {
	for id, t := range s.expiries {
		t.Stop()
		delete(s.expiries, id)
	}
}

func (s *Service) removeLocked(id string) bool {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
