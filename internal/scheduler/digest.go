package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notexe/localhealth/internal/reminder"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const digestTimeout = 30 * time.Second

// Planner lists the reminders scheduled for a weekday.
type Planner interface {
	ScheduleFor(day time.Weekday) []reminder.Reminder
}

// Digest sends today's schedule through a surface on a cron schedule.
type Digest struct {
	planner Planner
	surface reminder.Surface
	cron    *cron.Cron
	now     func() time.Time
	log     logrus.FieldLogger
}

// NewDigest registers the digest job. spec is a standard 5-field cron
// expression evaluated in loc.
func NewDigest(planner Planner, surface reminder.Surface, spec string, loc *time.Location, log logrus.FieldLogger) (*Digest, error) {
	d := &Digest{
		planner: planner,
		surface: surface,
		cron:    cron.New(cron.WithLocation(loc)),
		now:     func() time.Time { return time.Now().In(loc) },
		log:     log.WithField("component", "digest"),
	}

	if _, err := d.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()

		if err := d.Send(ctx); err != nil {
			d.log.WithError(err).Warn("failed to send digest")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	return d, nil
}

// Run starts the cron and blocks until ctx is cancelled.
func (d *Digest) Run(ctx context.Context) {
	d.cron.Start()
	d.log.Info("started")

	<-ctx.Done()

	<-d.cron.Stop().Done()
	d.log.Info("shutting down")
}

// Send delivers today's schedule now. Nothing is sent when the schedule
// is empty or the surface is not granted.
func (d *Digest) Send(ctx context.Context) error {
	if d.surface == nil || d.surface.PermissionStatus() != reminder.PermissionGranted {
		return nil
	}

	today := d.now().Weekday()
	reminders := d.planner.ScheduleFor(today)
	if len(reminders) == 0 {
		d.log.Debug("nothing scheduled today")
		return nil
	}

	return d.surface.Show(ctx, fmt.Sprintf("📋 Medicines for %s", reminder.DayName(today)), FormatDigest(reminders))
}

// FormatDigest lists reminders one per line, earliest first.
func FormatDigest(reminders []reminder.Reminder) string {
	sorted := append([]reminder.Reminder(nil), reminders...)
	sortByTime(sorted)

	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		line := fmt.Sprintf("%s %s - %s", r.Time, r.MedicineName, r.Dosage)
		if r.Notes != "" {
			line += " (" + r.Notes + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func sortByTime(reminders []reminder.Reminder) {
	key := func(r reminder.Reminder) int {
		m, err := reminder.ParseTimeOfDay(r.Time)
		if err != nil {
			return 24 * 60
		}
		return m
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return key(reminders[i]) < key(reminders[j])
	})
}
