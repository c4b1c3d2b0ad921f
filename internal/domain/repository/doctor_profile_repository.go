package repository

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	// Search applies attribute filters for active doctors at the data source;
	// geospatial and name filtering happen on the returned set.
	Search(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
}
