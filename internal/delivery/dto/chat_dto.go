package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SendMessageRequest struct {
	RoomID   uuid.UUID `json:"room_id" validate:"required"`
	Type     string    `json:"type" validate:"omitempty,oneof=TEXT IMAGE FILE"`
	Content  string    `json:"content" validate:"required"`
	FileURL  string    `json:"file_url" validate:"omitempty,url"`
	FileName string    `json:"file_name" validate:"omitempty"`
}

type MarkReadRequest struct {
	RoomID uuid.UUID `json:"room_id" validate:"required"`
}

// Response DTOs

type ChatMemberResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role,omitempty"`
}

type ChatRoomResponse struct {
	ID            uuid.UUID            `json:"id"`
	Name          string               `json:"name,omitempty"`
	AppointmentID *uuid.UUID           `json:"appointment_id,omitempty"`
	Members       []ChatMemberResponse `json:"members,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type ChatRoomListResponse struct {
	Rooms []ChatRoomResponse `json:"rooms"`
	Total int                `json:"total"`
}

type ChatMessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	RoomID     uuid.UUID  `json:"room_id"`
	SenderID   uuid.UUID  `json:"sender_id"`
	SenderName string     `json:"sender_name,omitempty"`
	Type       string     `json:"type"`
	Content    string     `json:"content"`
	FileURL    string     `json:"file_url,omitempty"`
	FileName   string     `json:"file_name,omitempty"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ChatMessageListResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Total    int64                 `json:"total"`
}

type MessagesReadResponse struct {
	RoomID   uuid.UUID `json:"room_id"`
	ReaderID uuid.UUID `json:"reader_id"`
	Count    int64     `json:"count"`
}
