package repository

import (
	"errors"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	domainRepo "github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Search returns profiles of active doctors matching the attribute filters.
func (r *doctorProfileRepository) Search(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true).
		Where("users.role_id = ?", entity.RoleIDDoctor)

	if filter != nil {
		if filter.Specialization != "" {
			query = query.Where("doctor_profiles.specialization = ?", filter.Specialization)
		}
		if filter.ClinicName != "" {
			query = query.Where("doctor_profiles.clinic_name ILIKE ?", "%"+filter.ClinicName+"%")
		}
		if filter.MinFee != nil {
			query = query.Where("doctor_profiles.consultation_fee >= ?", *filter.MinFee)
		}
		if filter.MaxFee != nil {
			query = query.Where("doctor_profiles.consultation_fee <= ?", *filter.MaxFee)
		}
		if filter.RequireCoords {
			query = query.Where("doctor_profiles.clinic_latitude IS NOT NULL AND doctor_profiles.clinic_longitude IS NOT NULL")
		}
	}

	err := query.Preload("User").Order("doctor_profiles.user_id").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User").Save(profile).Error
}
