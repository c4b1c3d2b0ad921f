package converter

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
)

// QueueEntryToResponse converts a QueueEntry entity to its DTO.
// PatientName is filled when the Patient relationship is loaded.
func QueueEntryToResponse(entry *entity.QueueEntry) *dto.QueueEntryResponse {
	if entry == nil {
		return nil
	}

	return &dto.QueueEntryResponse{
		ID:          entry.ID,
		PatientID:   entry.PatientID,
		PatientName: entry.Patient.FullName,
		DoctorID:    entry.DoctorID,
		ClinicID:    entry.ClinicID,
		Position:    entry.Position,
		Status:      string(entry.Status),
		CalledAt:    entry.CalledAt,
		CreatedAt:   entry.CreatedAt,
	}
}

// QueueToResponse converts a scope's waiting entries to the queue snapshot DTO
func QueueToResponse(scope entity.QueueScope, entries []entity.QueueEntry) *dto.QueueResponse {
	responses := make([]dto.QueueEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *QueueEntryToResponse(&entries[i])
	}

	return &dto.QueueResponse{
		Entries: responses,
		Total:   len(responses),
		Room:    scope.Room(),
	}
}
