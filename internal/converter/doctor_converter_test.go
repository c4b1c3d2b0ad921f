package converter

import (
	"testing"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorProfileToResponse(t *testing.T) {
	lat, lon := -6.2, 106.8
	profile := &entity.DoctorProfile{
		UserID:          uuid.New(),
		LicenseNumber:   "SIP-001",
		Specialization:  "cardiology",
		ClinicName:      "Heart Clinic",
		ClinicLatitude:  &lat,
		ClinicLongitude: &lon,
		ConsultationFee: decimal.NewFromFloat(150000.5),
		WorkingHours: entity.WorkingHours{
			"monday": {IsOpen: true, Start: "09:00", End: "17:00"},
		},
		User: entity.User{FullName: "Dr. Budi"},
	}

	response := DoctorProfileToResponse(profile)
	require.NotNil(t, response)
	assert.Equal(t, "Dr. Budi", response.FullName)
	assert.Equal(t, "150000.50", response.ConsultationFee)
	assert.Equal(t, &lat, response.ClinicLatitude)
	require.Contains(t, response.WorkingHours, "monday")
	assert.True(t, response.WorkingHours["monday"].IsOpen)
	assert.Equal(t, "09:00", response.WorkingHours["monday"].Start)
	assert.Nil(t, response.DistanceKm)
}

func TestDoctorProfileToResponseEmptyHours(t *testing.T) {
	profile := &entity.DoctorProfile{
		UserID:          uuid.New(),
		ConsultationFee: decimal.Zero,
		WorkingHours:    entity.WorkingHours(schedule.WeeklySchedule{}),
	}

	response := DoctorProfileToResponse(profile)
	require.NotNil(t, response)
	assert.Equal(t, "0.00", response.ConsultationFee)
	assert.Nil(t, response.WorkingHours)
}

func TestDoctorProfileToSearchResult(t *testing.T) {
	distance := 4.2
	profile := &entity.DoctorProfile{
		UserID:          uuid.New(),
		ConsultationFee: decimal.NewFromInt(200000),
	}

	result := DoctorProfileToSearchResult(profile, &distance)
	require.NotNil(t, result.DistanceKm)
	assert.Equal(t, 4.2, *result.DistanceKm)
}
