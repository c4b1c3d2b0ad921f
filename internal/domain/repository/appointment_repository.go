package repository

import (
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveByDoctorAndDay returns the doctor's appointments scheduled in
	// [dayStart, dayEnd) whose status still blocks slots.
	FindActiveByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error)
	FindByPatient(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) error
}
