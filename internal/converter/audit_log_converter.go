package converter

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
)

// AuditLogsToResponses converts a slice of AuditLog entities to DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = dto.AuditLogResponse{
			ID:        log.ID,
			User:      UserToResponse(log.User),
			Action:    log.Action,
			Metadata:  log.Metadata,
			CreatedAt: log.CreatedAt,
		}
	}
	return responses
}
