package converter

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
)

// DoctorProfileToResponse converts a DoctorProfile entity to its DTO.
// FullName is filled when the User relationship is loaded.
func DoctorProfileToResponse(profile *entity.DoctorProfile) *dto.DoctorProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.DoctorProfileResponse{
		UserID:          profile.UserID,
		FullName:        profile.User.FullName,
		LicenseNumber:   profile.LicenseNumber,
		Specialization:  profile.Specialization,
		Biography:       profile.Biography,
		ClinicName:      profile.ClinicName,
		ClinicAddress:   profile.ClinicAddress,
		ClinicLatitude:  profile.ClinicLatitude,
		ClinicLongitude: profile.ClinicLongitude,
		ConsultationFee: profile.ConsultationFee.StringFixed(2),
		WorkingHours:    workingHoursToResponse(profile.WorkingHours),
	}

	return response
}

// DoctorProfileToSearchResult builds the search response item carrying the
// computed distance from the caller's location.
func DoctorProfileToSearchResult(profile *entity.DoctorProfile, distanceKm *float64) dto.DoctorProfileResponse {
	response := DoctorProfileToResponse(profile)
	response.DistanceKm = distanceKm
	return *response
}

func workingHoursToResponse(hours entity.WorkingHours) map[string]dto.DayScheduleRequest {
	if len(hours) == 0 {
		return nil
	}

	result := make(map[string]dto.DayScheduleRequest, len(hours))
	for day, schedule := range hours {
		result[day] = dto.DayScheduleRequest{
			IsOpen: schedule.IsOpen,
			Start:  schedule.Start,
			End:    schedule.End,
		}
	}
	return result
}
