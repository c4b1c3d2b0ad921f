package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harsh11x/pulsecal.web-sub000/pkg/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data, including the clinic
// location and weekly working hours the availability service reads.
type DoctorProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Biography       string          `gorm:"type:text" json:"biography,omitempty"`
	ClinicName      string          `gorm:"type:varchar(255)" json:"clinic_name,omitempty"`
	ClinicAddress   string          `gorm:"type:text" json:"clinic_address,omitempty"`
	ClinicLatitude  *float64        `gorm:"type:double precision" json:"clinic_latitude,omitempty"`
	ClinicLongitude *float64        `gorm:"type:double precision" json:"clinic_longitude,omitempty"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	WorkingHours    WorkingHours    `gorm:"type:jsonb" json:"working_hours,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// HasLocation checks whether the clinic has coordinates for proximity search
func (d *DoctorProfile) HasLocation() bool {
	return d.ClinicLatitude != nil && d.ClinicLongitude != nil
}

// WorkingHours is the per-weekday open/close configuration stored as JSONB
type WorkingHours schedule.WeeklySchedule

// Value implements driver.Valuer
func (w WorkingHours) Value() (driver.Value, error) {
	if len(w) == 0 {
		return nil, nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner
func (w *WorkingHours) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := schedule.WeeklySchedule{}
	err := json.Unmarshal(bytes, &result)
	*w = WorkingHours(result)
	return err
}
