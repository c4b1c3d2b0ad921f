package converter

import (
	"testing"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEntryToResponse(t *testing.T) {
	calledAt := time.Now()
	entry := &entity.QueueEntry{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		Position:  3,
		Status:    entity.QueueStatusInProgress,
		CalledAt:  &calledAt,
		Patient:   entity.User{FullName: "Jane Smith"},
	}

	response := QueueEntryToResponse(entry)
	require.NotNil(t, response)
	assert.Equal(t, entry.ID, response.ID)
	assert.Equal(t, "Jane Smith", response.PatientName)
	assert.Equal(t, 3, response.Position)
	assert.Equal(t, "in_progress", response.Status)
	assert.Equal(t, &calledAt, response.CalledAt)
}

func TestQueueEntryToResponseNil(t *testing.T) {
	assert.Nil(t, QueueEntryToResponse(nil))
}

func TestQueueToResponse(t *testing.T) {
	doctorID := uuid.New()
	scope := entity.QueueScope{DoctorID: &doctorID}
	entries := []entity.QueueEntry{
		{ID: uuid.New(), Position: 1, Status: entity.QueueStatusWaiting},
		{ID: uuid.New(), Position: 2, Status: entity.QueueStatusWaiting},
	}

	response := QueueToResponse(scope, entries)
	require.NotNil(t, response)
	assert.Len(t, response.Entries, 2)
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, scope.Room(), response.Room)
	assert.Equal(t, 1, response.Entries[0].Position)
	assert.Equal(t, 2, response.Entries[1].Position)
}

func TestQueueToResponseEmpty(t *testing.T) {
	response := QueueToResponse(entity.QueueScope{}, nil)
	require.NotNil(t, response)
	assert.Empty(t, response.Entries)
	assert.Equal(t, 0, response.Total)
	assert.Equal(t, "queue-all-all", response.Room)
}
