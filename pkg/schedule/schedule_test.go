package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayDate(t *testing.T, weekday time.Weekday) time.Time {
	t.Helper()
	// 2025-06-02 is a Monday.
	d := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestOpenInterval(t *testing.T) {
	ws := WeeklySchedule{
		"monday":  {IsOpen: true, Start: "09:00", End: "17:00"},
		"tuesday": {IsOpen: false, Start: "09:00", End: "17:00"},
		"friday":  {IsOpen: true, Start: "10:00", End: "10:00"},
	}

	t.Run("Open Day", func(t *testing.T) {
		date := weekdayDate(t, time.Monday)
		start, end, open := OpenInterval(ws, date)
		require.True(t, open)
		assert.Equal(t, date.Add(9*time.Hour), start)
		assert.Equal(t, date.Add(17*time.Hour), end)
	})

	t.Run("Closed Flag", func(t *testing.T) {
		_, _, open := OpenInterval(ws, weekdayDate(t, time.Tuesday))
		assert.False(t, open)
	})

	t.Run("Missing Weekday", func(t *testing.T) {
		_, _, open := OpenInterval(ws, weekdayDate(t, time.Sunday))
		assert.False(t, open)
	})

	t.Run("Zero Length Interval", func(t *testing.T) {
		_, _, open := OpenInterval(ws, weekdayDate(t, time.Friday))
		assert.False(t, open)
	})

	t.Run("Bad Clock String", func(t *testing.T) {
		bad := WeeklySchedule{"monday": {IsOpen: true, Start: "9am", End: "5pm"}}
		_, _, open := OpenInterval(bad, weekdayDate(t, time.Monday))
		assert.False(t, open)
	})
}

func TestFreeSlots_WorkingDayWithOneBooking(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(17 * time.Hour)
	now := date.Add(8 * time.Hour)

	booked := []Window{{Start: date.Add(10 * time.Hour), Duration: 30 * time.Minute}}

	slots := FreeSlots(start, end, DefaultSlotDuration, booked, now)

	// 16 half-hour slots in 09:00-17:00 minus the booked one.
	assert.Len(t, slots, 15)
	assert.NotContains(t, slots, date.Add(10*time.Hour))
	assert.Contains(t, slots, date.Add(10*time.Hour+30*time.Minute))
	assert.Contains(t, slots, date.Add(9*time.Hour+30*time.Minute))
}

func TestFreeSlots_Granularity(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(12 * time.Hour)

	slots := FreeSlots(start, end, DefaultSlotDuration, nil, start)

	for _, s := range slots {
		offset := s.Sub(start)
		assert.Zero(t, offset%DefaultSlotDuration, "slot %v not aligned to the interval start", s)
	}
}

func TestFreeSlots_BookingSpanningSlotBoundary(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(11 * time.Hour)

	// 09:45-10:15 overlaps the 09:30 and the 10:00 slots, nothing else.
	booked := []Window{{Start: date.Add(9*time.Hour + 45*time.Minute), Duration: 30 * time.Minute}}

	slots := FreeSlots(start, end, DefaultSlotDuration, booked, start)

	assert.Contains(t, slots, date.Add(9*time.Hour))
	assert.NotContains(t, slots, date.Add(9*time.Hour+30*time.Minute))
	assert.NotContains(t, slots, date.Add(10*time.Hour))
	assert.Contains(t, slots, date.Add(10*time.Hour+30*time.Minute))
}

func TestFreeSlots_DuplicateBookingsAreIdempotent(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(11 * time.Hour)

	w := Window{Start: date.Add(10 * time.Hour), Duration: 30 * time.Minute}

	once := FreeSlots(start, end, DefaultSlotDuration, []Window{w}, start)
	twice := FreeSlots(start, end, DefaultSlotDuration, []Window{w, w, w}, start)

	assert.Equal(t, once, twice)
}

func TestFreeSlots_SkipsPastSlots(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(11 * time.Hour)
	now := date.Add(10 * time.Hour)

	slots := FreeSlots(start, end, DefaultSlotDuration, nil, now)

	require.Len(t, slots, 2)
	assert.Equal(t, date.Add(10*time.Hour), slots[0])
	assert.Equal(t, date.Add(10*time.Hour+30*time.Minute), slots[1])
}

func TestFreeSlots_SlotBookingNonOverlap(t *testing.T) {
	date := weekdayDate(t, time.Monday)
	start := date.Add(9 * time.Hour)
	end := date.Add(17 * time.Hour)

	booked := []Window{
		{Start: date.Add(9*time.Hour + 15*time.Minute), Duration: 45 * time.Minute},
		{Start: date.Add(13 * time.Hour), Duration: 90 * time.Minute},
	}

	slots := FreeSlots(start, end, DefaultSlotDuration, booked, start)

	for _, s := range slots {
		slotEnd := s.Add(DefaultSlotDuration)
		for _, b := range booked {
			overlap := s.Before(b.End()) && slotEnd.After(b.Start)
			assert.False(t, overlap, "slot %v overlaps booking starting %v", s, b.Start)
		}
	}
}
