package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestQueueScopeKey(t *testing.T) {
	doctorID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	clinicID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	tests := []struct {
		name  string
		scope QueueScope
		key   string
		room  string
	}{
		{
			name:  "global queue",
			scope: QueueScope{},
			key:   "all:all",
			room:  "queue-all-all",
		},
		{
			name:  "doctor only",
			scope: QueueScope{DoctorID: &doctorID},
			key:   doctorID.String() + ":all",
			room:  "queue-" + doctorID.String() + "-all",
		},
		{
			name:  "clinic only",
			scope: QueueScope{ClinicID: &clinicID},
			key:   "all:" + clinicID.String(),
			room:  "queue-all-" + clinicID.String(),
		},
		{
			name:  "doctor and clinic",
			scope: QueueScope{DoctorID: &doctorID, ClinicID: &clinicID},
			key:   doctorID.String() + ":" + clinicID.String(),
			room:  "queue-" + doctorID.String() + "-" + clinicID.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.scope.Key())
			assert.Equal(t, tt.room, tt.scope.Room())
		})
	}
}

func TestQueueEntryScope(t *testing.T) {
	doctorID := uuid.New()
	entry := QueueEntry{PatientID: uuid.New(), DoctorID: &doctorID}

	scope := entry.Scope()
	assert.Equal(t, &doctorID, scope.DoctorID)
	assert.Nil(t, scope.ClinicID)
}

func TestQueueEntryStatusChecks(t *testing.T) {
	entry := QueueEntry{Status: QueueStatusWaiting}
	assert.True(t, entry.IsWaiting())
	assert.False(t, entry.IsTerminal())

	entry.Status = QueueStatusInProgress
	assert.False(t, entry.IsWaiting())
	assert.False(t, entry.IsTerminal())

	entry.Status = QueueStatusCompleted
	assert.True(t, entry.IsTerminal())

	entry.Status = QueueStatusCancelled
	assert.True(t, entry.IsTerminal())
}
