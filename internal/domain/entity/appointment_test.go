package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentBlocksSlots(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		blocks bool
	}{
		{AppointmentStatusScheduled, true},
		{AppointmentStatusConfirmed, true},
		{AppointmentStatusCompleted, true},
		{AppointmentStatusCancelled, false},
		{AppointmentStatusNoShow, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			appointment := Appointment{Status: tt.status}
			assert.Equal(t, tt.blocks, appointment.BlocksSlots())
		})
	}
}

func TestAppointmentEndsAt(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appointment := Appointment{ScheduledAt: start, DurationMinutes: 45}

	assert.Equal(t, start.Add(45*time.Minute), appointment.EndsAt())
}
