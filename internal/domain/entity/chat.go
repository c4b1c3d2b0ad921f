package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessageType represents the kind of content a chat message carries.
// The realtime layer relays messages without interpreting the content.
type ChatMessageType string

const (
	ChatMessageTypeText   ChatMessageType = "TEXT"
	ChatMessageTypeImage  ChatMessageType = "IMAGE"
	ChatMessageTypeFile   ChatMessageType = "FILE"
	ChatMessageTypeSystem ChatMessageType = "SYSTEM"
)

// ChatRoom represents a conversation between participants, typically a
// patient and a doctor around an appointment.
type ChatRoom struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string     `gorm:"type:varchar(255)" json:"name,omitempty"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Members  []User        `gorm:"many2many:chat_room_users" json:"members,omitempty"`
	Messages []ChatMessage `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// ChatMessage represents one message in a chat room
type ChatMessage struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoomID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"room_id"`
	SenderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"sender_id"`
	Type      ChatMessageType `gorm:"type:varchar(10);not null;default:'TEXT'" json:"type"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	FileURL   string          `gorm:"type:text" json:"file_url,omitempty"`
	FileName  string          `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	IsRead    bool            `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Room   ChatRoom `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Sender User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
