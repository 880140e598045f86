package notify

import (
	"context"
	"errors"

	"github.com/notexe/localhealth/internal/reminder"
)

// Multi fans notifications out to several surfaces.
type Multi []reminder.Surface

// PermissionStatus is granted if any member is granted, default if any
// member can still ask, and denied otherwise.
func (m Multi) PermissionStatus() reminder.Permission {
	status := reminder.PermissionDenied
	for _, s := range m {
		switch s.PermissionStatus() {
		case reminder.PermissionGranted:
			return reminder.PermissionGranted
		case reminder.PermissionDefault:
			status = reminder.PermissionDefault
		}
	}
	return status
}

// RequestPermission asks every member.
func (m Multi) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	var errs []error
	for _, s := range m {
		if _, err := s.RequestPermission(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return m.PermissionStatus(), errors.Join(errs...)
}

// Show delivers to every granted member.
func (m Multi) Show(ctx context.Context, title, body string) error {
	var errs []error
	for _, s := range m {
		if s.PermissionStatus() != reminder.PermissionGranted {
			continue
		}
		if err := s.Show(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
