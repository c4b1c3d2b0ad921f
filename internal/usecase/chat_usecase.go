package usecase

import (
	"context"
	"errors"

	"github.com/harsh11x/pulsecal.web-sub000/internal/converter"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrChatRoomNotFound     = errors.New("chat room not found")
	ErrChatRoomAccessDenied = errors.New("you are not a member of this chat room")
)

const defaultMessagePageSize = 50

type ChatUsecase interface {
	ListRooms(ctx context.Context) (*dto.ChatRoomListResponse, error)
	GetMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) (*dto.ChatMessageListResponse, error)
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error)
	MarkRead(ctx context.Context, roomID uuid.UUID) (*dto.MessagesReadResponse, error)
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
}

type chatUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	chatRepo repository.ChatRepository
	notifier *service.Notifier
}

func NewChatUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	chatRepo repository.ChatRepository,
	notifier *service.Notifier,
) ChatUsecase {
	return &chatUsecase{
		db:       db,
		log:      log,
		chatRepo: chatRepo,
		notifier: notifier,
	}
}

// ListRooms returns the logged-in user's chat rooms, most recently active
// first.
func (u *chatUsecase) ListRooms(ctx context.Context) (*dto.ChatRoomListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	rooms, err := u.chatRepo.FindRoomsByMember(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find chat rooms for user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.ChatRoomListResponse{
		Rooms: converter.ChatRoomsToResponses(rooms),
		Total: len(rooms),
	}, nil
}

// GetMessages returns a page of the room's messages, newest first. The caller
// must be a room member.
func (u *chatUsecase) GetMessages(ctx context.Context, roomID uuid.UUID, limit, offset int) (*dto.ChatMessageListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.requireMembership(ctx, roomID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}

	messages, total, err := u.chatRepo.FindMessagesByRoom(u.db.WithContext(ctx), roomID, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to find messages for room %s: %+v", roomID, err)
		return nil, err
	}

	return &dto.ChatMessageListResponse{
		Messages: converter.ChatMessagesToResponses(messages),
		Total:    total,
	}, nil
}

// SendMessage persists a message and fans it out to the room's connected
// members.
func (u *chatUsecase) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.ChatMessageResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.requireMembership(ctx, req.RoomID, userID); err != nil {
		return nil, err
	}

	messageType := entity.ChatMessageTypeText
	if req.Type != "" {
		messageType = entity.ChatMessageType(req.Type)
	}

	message := &entity.ChatMessage{
		RoomID:   req.RoomID,
		SenderID: userID,
		Type:     messageType,
		Content:  req.Content,
		FileURL:  req.FileURL,
		FileName: req.FileName,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.chatRepo.CreateMessage(tx, message); err != nil {
		u.log.Warnf("Failed to create message in room %s: %+v", req.RoomID, err)
		return nil, err
	}

	if err := u.chatRepo.TouchRoom(tx, req.RoomID); err != nil {
		u.log.Warnf("Failed to touch room %s: %+v", req.RoomID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	response := converter.ChatMessageToResponse(message)
	u.notifier.NewMessage(req.RoomID, response)

	return response, nil
}

// MarkRead marks every unread message in the room not sent by the caller and
// tells the room who caught up.
func (u *chatUsecase) MarkRead(ctx context.Context, roomID uuid.UUID) (*dto.MessagesReadResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if err := u.requireMembership(ctx, roomID, userID); err != nil {
		return nil, err
	}

	count, err := u.chatRepo.MarkMessagesRead(u.db.WithContext(ctx), roomID, userID)
	if err != nil {
		u.log.Warnf("Failed to mark messages read in room %s: %+v", roomID, err)
		return nil, err
	}

	response := &dto.MessagesReadResponse{
		RoomID:   roomID,
		ReaderID: userID,
		Count:    count,
	}
	if count > 0 {
		u.notifier.MessagesRead(roomID, response)
	}

	return response, nil
}

// IsMember reports room membership. The realtime layer uses it to gate
// join-room actions.
func (u *chatUsecase) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	return u.chatRepo.IsRoomMember(u.db.WithContext(ctx), roomID, userID)
}

func (u *chatUsecase) requireMembership(ctx context.Context, roomID, userID uuid.UUID) error {
	room, err := u.chatRepo.FindRoomByID(u.db.WithContext(ctx), roomID)
	if err != nil {
		u.log.Warnf("Failed to find chat room %s: %+v", roomID, err)
		return err
	}
	if room == nil {
		return ErrChatRoomNotFound
	}

	member, err := u.chatRepo.IsRoomMember(u.db.WithContext(ctx), roomID, userID)
	if err != nil {
		u.log.Warnf("Failed to check membership for room %s: %+v", roomID, err)
		return err
	}
	if !member {
		return ErrChatRoomAccessDenied
	}
	return nil
}
