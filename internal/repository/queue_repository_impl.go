package repository

import (
	"errors"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	domainRepo "github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type queueRepository struct{}

func NewQueueRepository() domainRepo.QueueRepository {
	return &queueRepository{}
}

func (r *queueRepository) Create(db *gorm.DB, entry *entity.QueueEntry) error {
	return db.Create(entry).Error
}

func (r *queueRepository) FindByID(db *gorm.DB, id uuid.UUID, forUpdate bool) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	query := db.Where("id = ?", id)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueRepository) FindWaitingByPatient(db *gorm.DB, patientID uuid.UUID, forUpdate bool) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	query := db.Where("patient_id = ? AND status = ?", patientID, entity.QueueStatusWaiting)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueRepository) FindWaitingByScope(db *gorm.DB, scope entity.QueueScope, forUpdate bool) ([]entity.QueueEntry, error) {
	var entries []entity.QueueEntry
	query := scopeQuery(db, scope).Where("status = ?", entity.QueueStatusWaiting)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Preload("Patient").Order("position ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *queueRepository) FindFirstWaiting(db *gorm.DB, scope entity.QueueScope, forUpdate bool) (*entity.QueueEntry, error) {
	var entry entity.QueueEntry
	query := scopeQuery(db, scope).Where("status = ?", entity.QueueStatusWaiting)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Order("position ASC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *queueRepository) MaxPosition(db *gorm.DB, scope entity.QueueScope) (int, error) {
	var max int
	err := scopeQuery(db.Model(&entity.QueueEntry{}), scope).
		Where("status = ?", entity.QueueStatusWaiting).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *queueRepository) CountAhead(db *gorm.DB, scope entity.QueueScope, position int) (int64, error) {
	var count int64
	err := scopeQuery(db.Model(&entity.QueueEntry{}), scope).
		Where("status = ? AND position < ?", entity.QueueStatusWaiting, position).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *queueRepository) Update(db *gorm.DB, entry *entity.QueueEntry) error {
	return db.Omit("Patient").Save(entry).Error
}

func (r *queueRepository) DecrementPositionsAfter(db *gorm.DB, scope entity.QueueScope, position int) error {
	return scopeQuery(db.Model(&entity.QueueEntry{}), scope).
		Where("status = ? AND position > ?", entity.QueueStatusWaiting, position).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
}

// scopeQuery narrows the query to one waiting line. A nil scope component
// matches only rows where that column is NULL, so the global queue and every
// doctor or clinic queue stay disjoint.
func scopeQuery(db *gorm.DB, scope entity.QueueScope) *gorm.DB {
	if scope.DoctorID != nil {
		db = db.Where("doctor_id = ?", *scope.DoctorID)
	} else {
		db = db.Where("doctor_id IS NULL")
	}
	if scope.ClinicID != nil {
		db = db.Where("clinic_id = ?", *scope.ClinicID)
	} else {
		db = db.Where("clinic_id IS NULL")
	}
	return db
}
