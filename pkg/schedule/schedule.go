// Package schedule computes open intervals and free appointment slots from a
// doctor's weekly working hours. All functions are pure; results are
// recomputed on every call.
package schedule

import (
	"strings"
	"time"
)

// DefaultSlotDuration is the appointment slot granularity.
const DefaultSlotDuration = 30 * time.Minute

// DaySchedule is the open window for a single weekday.
// JSON field names match the stored working_hours document.
type DaySchedule struct {
	IsOpen bool   `json:"isOpen"`
	Start  string `json:"start"` // HH:MM
	End    string `json:"end"`   // HH:MM
}

// WeeklySchedule maps lowercase weekday names ("monday".."sunday") to their
// open window.
type WeeklySchedule map[string]DaySchedule

// Window is a booked interval that blocks slots.
type Window struct {
	Start    time.Time
	Duration time.Duration
}

// End returns the exclusive end of the window.
func (w Window) End() time.Time {
	return w.Start.Add(w.Duration)
}

// OpenInterval resolves the open interval for the given date. open is false
// when the weekday has no entry, the day is flagged closed, or the stored
// times do not parse.
func OpenInterval(ws WeeklySchedule, date time.Time) (start, end time.Time, open bool) {
	day, ok := ws[strings.ToLower(date.Weekday().String())]
	if !ok || !day.IsOpen {
		return time.Time{}, time.Time{}, false
	}

	start, err := atTime(date, day.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = atTime(date, day.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// FreeSlots walks [start, end) in steps of slotDuration and returns every slot
// start that does not overlap a booked window and is not in the past.
// Overlap is half-open: a slot [t, t+d) conflicts with a booking [b, b+bd)
// iff t < b+bd && t+d > b.
func FreeSlots(start, end time.Time, slotDuration time.Duration, booked []Window, now time.Time) []time.Time {
	slots := []time.Time{}
	if slotDuration <= 0 {
		return slots
	}

	for t := start; t.Before(end); t = t.Add(slotDuration) {
		if t.Before(now) {
			continue
		}
		slotEnd := t.Add(slotDuration)

		conflict := false
		for _, b := range booked {
			if t.Before(b.End()) && slotEnd.After(b.Start) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, t)
		}
	}

	return slots
}

// IsWeekday reports whether name is a valid weekday key, case-insensitive.
func IsWeekday(name string) bool {
	switch strings.ToLower(name) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

// IsValidWindow reports whether start and end are HH:MM clock strings with
// start strictly before end.
func IsValidWindow(start, end string) bool {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return false
	}
	return e.After(s)
}

// atTime combines the date with an HH:MM clock string in the date's location.
func atTime(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
