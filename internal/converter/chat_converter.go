package converter

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
)

// ChatRoomToResponse converts a ChatRoom entity to its DTO
func ChatRoomToResponse(room *entity.ChatRoom) *dto.ChatRoomResponse {
	if room == nil {
		return nil
	}

	members := make([]dto.ChatMemberResponse, len(room.Members))
	for i, member := range room.Members {
		members[i] = dto.ChatMemberResponse{
			ID:       member.ID,
			FullName: member.FullName,
			Role:     member.Role.RoleName,
		}
	}

	return &dto.ChatRoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		AppointmentID: room.AppointmentID,
		Members:       members,
		UpdatedAt:     room.UpdatedAt,
	}
}

// ChatRoomsToResponses converts a slice of ChatRoom entities to DTOs
func ChatRoomsToResponses(rooms []entity.ChatRoom) []dto.ChatRoomResponse {
	responses := make([]dto.ChatRoomResponse, len(rooms))
	for i := range rooms {
		responses[i] = *ChatRoomToResponse(&rooms[i])
	}
	return responses
}

// ChatMessageToResponse converts a ChatMessage entity to its DTO.
// SenderName is filled when the Sender relationship is loaded.
func ChatMessageToResponse(message *entity.ChatMessage) *dto.ChatMessageResponse {
	if message == nil {
		return nil
	}

	return &dto.ChatMessageResponse{
		ID:         message.ID,
		RoomID:     message.RoomID,
		SenderID:   message.SenderID,
		SenderName: message.Sender.FullName,
		Type:       string(message.Type),
		Content:    message.Content,
		FileURL:    message.FileURL,
		FileName:   message.FileName,
		IsRead:     message.IsRead,
		ReadAt:     message.ReadAt,
		CreatedAt:  message.CreatedAt,
	}
}

// ChatMessagesToResponses converts a slice of ChatMessage entities to DTOs
func ChatMessagesToResponses(messages []entity.ChatMessage) []dto.ChatMessageResponse {
	responses := make([]dto.ChatMessageResponse, len(messages))
	for i := range messages {
		responses[i] = *ChatMessageToResponse(&messages[i])
	}
	return responses
}
