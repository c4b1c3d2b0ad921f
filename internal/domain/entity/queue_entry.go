package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueueStatus represents the lifecycle state of a queue entry
type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "waiting"
	QueueStatusInProgress QueueStatus = "in_progress"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusCancelled  QueueStatus = "cancelled"
)

// QueueEntry represents one patient's membership in a waiting line.
// Within a scope, waiting entries hold contiguous 1-based positions ordered
// by arrival.
type QueueEntry struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    *uuid.UUID  `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	ClinicID    *uuid.UUID  `gorm:"type:uuid;index" json:"clinic_id,omitempty"`
	Position    int         `gorm:"not null" json:"position"`
	Status      QueueStatus `gorm:"type:queue_status;not null;default:'waiting';index" json:"status"`
	CalledAt    *time.Time  `json:"called_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

// IsWaiting checks if the entry is still in the waiting line
func (e *QueueEntry) IsWaiting() bool {
	return e.Status == QueueStatusWaiting
}

// IsTerminal checks if the entry has left the queue for good
func (e *QueueEntry) IsTerminal() bool {
	return e.Status == QueueStatusCompleted || e.Status == QueueStatusCancelled
}

// Scope returns the entry's queue scope
func (e *QueueEntry) Scope() QueueScope {
	return QueueScope{DoctorID: e.DoctorID, ClinicID: e.ClinicID}
}

// QueueScope identifies one logical waiting line by an optional doctor and
// clinic. Both absent addresses the single global walk-in queue.
type QueueScope struct {
	DoctorID *uuid.UUID
	ClinicID *uuid.UUID
}

// Key returns a stable string form used for lock keys and room names,
// e.g. "abc...:all" or "all:all" for the global queue.
func (s QueueScope) Key() string {
	return fmt.Sprintf("%s:%s", idOrAll(s.DoctorID), idOrAll(s.ClinicID))
}

// Room returns the realtime channel name for this scope
func (s QueueScope) Room() string {
	return fmt.Sprintf("queue-%s-%s", idOrAll(s.DoctorID), idOrAll(s.ClinicID))
}

func idOrAll(id *uuid.UUID) string {
	if id == nil {
		return "all"
	}
	return id.String()
}
