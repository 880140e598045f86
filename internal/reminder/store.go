package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultSnapshotKey is the persistence key of the reminder snapshot.
	DefaultSnapshotKey = "localHealthReminders"
	// DefaultTolerance is the due window half-width in minutes.
	DefaultTolerance = 2
	// DefaultRetention is how long a notification stays in the queue.
	DefaultRetention = 5 * time.Minute

	persistTimeout  = 5 * time.Second
	deliveryTimeout = 30 * time.Second
)

// Service owns the reminder collection and the notification queue.
// It is safe for concurrent use by the scheduler and a front-end.
type Service struct {
	mu            sync.Mutex
	reminders     []Reminder
	notifications []Notification
	expiries      map[string]*time.Timer
	lastID        int64
	closed        bool

	persister Persister
	surface   Surface
	log       logrus.FieldLogger
	now       func() time.Time
	loc       *time.Location
	key       string
	tolerance int
	retention time.Duration

	deliveries sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the calendar used for weekdays and minutes of day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithSurface sets where notifications are delivered besides the in-memory queue.
func WithSurface(surface Surface) Option {
	return func(s *Service) { s.surface = surface }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithTolerance sets the due window half-width in minutes.
func WithTolerance(minutes int) Option {
	return func(s *Service) { s.tolerance = minutes }
}

// WithRetention sets how long notifications live before they expire.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

// WithSnapshotKey sets the persistence key.
func WithSnapshotKey(key string) Option {
	return func(s *Service) { s.key = key }
}

// NewService creates a Service. A nil persister keeps reminders in memory only.
func NewService(persister Persister, opts ...Option) *Service {
	s := &Service{
		persister: persister,
		expiries:  make(map[string]*time.Timer),
		now:       time.Now,
		loc:       time.Local,
		key:       DefaultSnapshotKey,
		tolerance: DefaultTolerance,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	s.log = s.log.WithField("component", "reminder")
	return s
}

// Load restores the persisted snapshot, replacing the in-memory collection.
// A missing snapshot is not an error.
func (s *Service) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	data, err := s.persister.Load(ctx, s.key)
	if err != nil {
		s.log.WithError(err).Error("failed to load reminders")
		return fmt.Errorf("failed to load reminders: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var reminders []Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		s.log.WithError(err).Error("failed to decode reminder snapshot")
		return fmt.Errorf("failed to decode reminder snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = reminders
	for _, r := range reminders {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	s.log.WithField("count", len(reminders)).Info("reminders loaded")
	return nil
}

// Add validates the input and stores a new pending reminder.
func (s *Service) Add(in Input) (Reminder, error) {
	in, err := in.normalize()
	if err != nil {
		return Reminder{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r := Reminder{
		ID:           s.nextID(now),
		MedicineName: in.MedicineName,
		Dosage:       in.Dosage,
		Frequency:    in.Frequency,
		Time:         in.Time,
		Days:         in.Days,
		Notes:        in.Notes,
		CreatedAt:    now,
	}
	s.reminders = append(s.reminders, r)
	s.persistLocked()

	return r.clone(), nil
}

// nextID derives the id from the creation time but never repeats one.
func (s *Service) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (in Input) normalize() (Input, error) {
	in.MedicineName = strings.TrimSpace(in.MedicineName)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Time = strings.TrimSpace(in.Time)
	in.Frequency = strings.ToLower(strings.TrimSpace(in.Frequency))
	in.Notes = strings.TrimSpace(in.Notes)

	switch {
	case in.MedicineName == "":
		return in, &ValidationError{Field: "medicineName"}
	case in.Dosage == "":
		return in, &ValidationError{Field: "dosage"}
	case in.Time == "":
		return in, &ValidationError{Field: "time"}
	}

	if in.Frequency == "" {
		in.Frequency = FrequencyDaily
	}
	if !ValidFrequency(in.Frequency) {
		return in, &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", in.Frequency)}
	}

	days, err := NormalizeDays(in.Days)
	if err != nil {
		return in, err
	}
	in.Days = days

	return in, nil
}

// Update merges the set fields into the reminder. It reports false and
// changes nothing when id is unknown. Blank values for the required
// medicine name, dosage and time are ignored.
func (s *Service) Update(id int64, fields UpdateFields) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Reminder{}, false
	}

	r := &s.reminders[i]
	setRequired(&r.MedicineName, fields.MedicineName)
	setRequired(&r.Dosage, fields.Dosage)
	setRequired(&r.Time, fields.Time)
	if fields.Frequency != nil {
		r.Frequency = *fields.Frequency
	}
	if fields.Days != nil {
		r.Days = append([]string(nil), fields.Days...)
	}
	if fields.Notes != nil {
		r.Notes = *fields.Notes
	}
	if fields.Completed != nil {
		r.Completed = *fields.Completed
	}
	if fields.CompletedAt != nil {
		t := *fields.CompletedAt
		r.CompletedAt = &t
	}

	s.persistLocked()
	return r.clone(), true
}

func setRequired(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}

// MarkCompleted completes a reminder. Completing it again keeps the
// original completion time.
func (s *Service) MarkCompleted(id int64) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Reminder{}, false
	}

	r := &s.reminders[i]
	if !r.Completed {
		now := s.now()
		r.Completed = true
		r.CompletedAt = &now
		s.persistLocked()
	}
	return r.clone(), true
}

// Delete removes a reminder. Deleting an unknown id is a no-op.
func (s *Service) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return
	}
	s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
	s.persistLocked()
}

// Get returns a single reminder by ID.
func (s *Service) Get(id int64) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Reminder{}, false
	}
	return s.reminders[i].clone(), true
}

// Reminders returns every reminder in insertion order.
func (s *Service) Reminders() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, r.clone())
	}
	return out
}

// Upcoming returns pending reminders ordered by time of day. Ties keep
// insertion order; reminders with an unreadable time come last.
func (s *Service) Upcoming() []Reminder {
	pending := s.filter(func(r Reminder) bool { return !r.Completed })

	sort.SliceStable(pending, func(i, j int) bool {
		return sortKey(pending[i]) < sortKey(pending[j])
	})
	return pending
}

func sortKey(r Reminder) int {
	m, err := ParseTimeOfDay(r.Time)
	if err != nil {
		return 24 * 60
	}
	return m
}

// TodaySchedule returns pending reminders scheduled for the current weekday.
func (s *Service) TodaySchedule() []Reminder {
	return s.ScheduleFor(s.now().In(s.loc).Weekday())
}

// ScheduleFor returns pending reminders scheduled for the given weekday.
func (s *Service) ScheduleFor(day time.Weekday) []Reminder {
	name := DayName(day)
	return s.filter(func(r Reminder) bool { return !r.Completed && r.HasDay(name) })
}

func (s *Service) filter(keep func(Reminder) bool) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Reminder
	for _, r := range s.reminders {
		if keep(r) {
			out = append(out, r.clone())
		}
	}
	return out
}

func (s *Service) indexLocked(id int64) int {
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked saves a full snapshot. Failures are logged; the in-memory
// collection stays authoritative.
func (s *Service) persistLocked() {
	if s.persister == nil {
		return
	}

	data, err := json.Marshal(s.reminders)
	if err != nil {
		s.log.WithError(err).Error("failed to encode reminder snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, s.key, data); err != nil {
		s.log.WithError(err).WithField("key", s.key).Error("failed to save reminders")
	}
}
