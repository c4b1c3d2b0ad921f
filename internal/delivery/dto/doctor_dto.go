package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type DayScheduleRequest struct {
	IsOpen bool   `json:"isOpen"`
	Start  string `json:"start" validate:"omitempty,hhmm"`
	End    string `json:"end" validate:"omitempty,hhmm"`
}

type UpdateWorkingHoursRequest struct {
	WorkingHours map[string]DayScheduleRequest `json:"working_hours" validate:"required,dive"`
}

type UpdateDoctorProfileRequest struct {
	Specialization  string   `json:"specialization" validate:"omitempty"`
	Biography       string   `json:"biography" validate:"omitempty"`
	ClinicName      string   `json:"clinic_name" validate:"omitempty"`
	ClinicAddress   string   `json:"clinic_address" validate:"omitempty"`
	ClinicLatitude  *float64 `json:"clinic_latitude" validate:"omitempty,latitude"`
	ClinicLongitude *float64 `json:"clinic_longitude" validate:"omitempty,longitude"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,min=0"`
}

// SearchDoctorsRequest is bound from query parameters.
type SearchDoctorsRequest struct {
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	ClinicName     string   `json:"clinic_name"`
	MinFee         *float64 `json:"min_fee" validate:"omitempty,min=0"`
	MaxFee         *float64 `json:"max_fee" validate:"omitempty,min=0"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,longitude"`
	RadiusKm       *float64 `json:"radius_km" validate:"omitempty,gt=0"`
	Page           int      `json:"page" validate:"omitempty,min=1"`
	Limit          int      `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Response DTOs

type DoctorProfileResponse struct {
	UserID          uuid.UUID                     `json:"user_id"`
	FullName        string                        `json:"full_name,omitempty"`
	LicenseNumber   string                        `json:"license_number"`
	Specialization  string                        `json:"specialization"`
	Biography       string                        `json:"biography,omitempty"`
	ClinicName      string                        `json:"clinic_name,omitempty"`
	ClinicAddress   string                        `json:"clinic_address,omitempty"`
	ClinicLatitude  *float64                      `json:"clinic_latitude,omitempty"`
	ClinicLongitude *float64                      `json:"clinic_longitude,omitempty"`
	ConsultationFee string                        `json:"consultation_fee"`
	WorkingHours    map[string]DayScheduleRequest `json:"working_hours,omitempty"`
	DistanceKm      *float64                      `json:"distance_km,omitempty"`
}

type DoctorSearchResponse struct {
	Doctors []DoctorProfileResponse `json:"doctors"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}

type AvailabilityResponse struct {
	DoctorID            uuid.UUID `json:"doctor_id"`
	Date                string    `json:"date"`
	IsOpen              bool      `json:"is_open"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	Slots               []string  `json:"slots"`
}
