package converter

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its DTO.
// Names are filled when the Patient and Doctor relationships are loaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		PatientName:     appointment.Patient.FullName,
		DoctorID:        appointment.DoctorID,
		DoctorName:      appointment.Doctor.FullName,
		ScheduledAt:     appointment.ScheduledAt,
		DurationMinutes: appointment.DurationMinutes,
		Reason:          appointment.Reason,
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
	}
}
