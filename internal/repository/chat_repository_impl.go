package repository

import (
	"errors"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	domainRepo "github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatRepository struct{}

func NewChatRepository() domainRepo.ChatRepository {
	return &chatRepository{}
}

func (r *chatRepository) FindRoomByID(db *gorm.DB, roomID uuid.UUID) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	err := db.Preload("Members").Where("id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) FindRoomsByMember(db *gorm.DB, userID uuid.UUID) ([]entity.ChatRoom, error) {
	var rooms []entity.ChatRoom
	err := db.
		Joins("JOIN chat_room_users ON chat_room_users.chat_room_id = chat_rooms.id").
		Where("chat_room_users.user_id = ?", userID).
		Preload("Members").
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *chatRepository) IsRoomMember(db *gorm.DB, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Table("chat_room_users").
		Where("chat_room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *chatRepository) CreateMessage(db *gorm.DB, message *entity.ChatMessage) error {
	return db.Create(message).Error
}

func (r *chatRepository) FindMessagesByRoom(db *gorm.DB, roomID uuid.UUID, limit, offset int) ([]entity.ChatMessage, int64, error) {
	var total int64
	if err := db.Model(&entity.ChatMessage{}).Where("room_id = ?", roomID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []entity.ChatMessage
	err := db.
		Where("room_id = ?", roomID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *chatRepository) MarkMessagesRead(db *gorm.DB, roomID, readerID uuid.UUID) (int64, error) {
	now := time.Now()
	result := db.Model(&entity.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *chatRepository) TouchRoom(db *gorm.DB, roomID uuid.UUID) error {
	return db.Model(&entity.ChatRoom{}).Where("id = ?", roomID).Update("updated_at", time.Now()).Error
}
