package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekdays lists the accepted day names in calendar order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseTimeOfDay converts "HH:MM" (or "H:MM") to minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || !isDigits(hh) || !isDigits(mm) {
		return 0, fmt.Errorf("time %q is not in HH:MM format", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || len(hh) > 2 || h > 23 {
		return 0, fmt.Errorf("time %q has an invalid hour", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || m > 59 {
		return 0, fmt.Errorf("time %q has an invalid minute", s)
	}

	return h*60 + m, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DayName returns the lowercase English name of a weekday.
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// NormalizeDays lowercases day names and drops duplicates, keeping order.
// It fails on anything that is not a weekday name.
func NormalizeDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if !isWeekday(d) {
			return nil, &ValidationError{Field: "days", Reason: fmt.Sprintf("unknown weekday %q", d)}
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

func isWeekday(d string) bool {
	for _, w := range Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// sameMinute reports whether a and b fall in the same calendar minute in loc.
func sameMinute(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}
