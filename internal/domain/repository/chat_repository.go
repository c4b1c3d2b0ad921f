package repository

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository interface {
	FindRoomByID(db *gorm.DB, roomID uuid.UUID) (*entity.ChatRoom, error)
	FindRoomsByMember(db *gorm.DB, userID uuid.UUID) ([]entity.ChatRoom, error)
	IsRoomMember(db *gorm.DB, roomID, userID uuid.UUID) (bool, error)
	CreateMessage(db *gorm.DB, message *entity.ChatMessage) error
	// FindMessagesByRoom returns the room's messages newest-first.
	FindMessagesByRoom(db *gorm.DB, roomID uuid.UUID, limit, offset int) ([]entity.ChatMessage, int64, error)
	// MarkMessagesRead marks every unread message in the room not sent by the
	// reader. Returns the number of rows updated.
	MarkMessagesRead(db *gorm.DB, roomID, readerID uuid.UUID) (int64, error)
	TouchRoom(db *gorm.DB, roomID uuid.UUID) error
}
