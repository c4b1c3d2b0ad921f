package repository

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueRepository is the durable store for queue entries. Callers are
// responsible for serializing mutating operations per scope; implementations
// honor row locks requested via forUpdate.
type QueueRepository interface {
	Create(db *gorm.DB, entry *entity.QueueEntry) error
	FindByID(db *gorm.DB, id uuid.UUID, forUpdate bool) (*entity.QueueEntry, error)
	// FindWaitingByPatient returns the patient's waiting entry in any scope.
	FindWaitingByPatient(db *gorm.DB, patientID uuid.UUID, forUpdate bool) (*entity.QueueEntry, error)
	// FindWaitingByScope returns waiting entries ordered by position.
	FindWaitingByScope(db *gorm.DB, scope entity.QueueScope, forUpdate bool) ([]entity.QueueEntry, error)
	// FindFirstWaiting returns the waiting entry with the smallest position.
	FindFirstWaiting(db *gorm.DB, scope entity.QueueScope, forUpdate bool) (*entity.QueueEntry, error)
	// MaxPosition returns the highest waiting position in scope, 0 when empty.
	MaxPosition(db *gorm.DB, scope entity.QueueScope) (int, error)
	// CountAhead counts waiting entries in scope with a smaller position.
	CountAhead(db *gorm.DB, scope entity.QueueScope, position int) (int64, error)
	Update(db *gorm.DB, entry *entity.QueueEntry) error
	// DecrementPositionsAfter shifts every waiting entry in scope with a
	// position greater than the given one down by exactly 1.
	DecrementPositionsAfter(db *gorm.DB, scope entity.QueueScope, position int) error
}
