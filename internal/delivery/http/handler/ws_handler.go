package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"
	"github.com/harsh11x/pulsecal.web-sub000/internal/usecase"
	"github.com/harsh11x/pulsecal.web-sub000/internal/ws"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/jwt"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/response"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// WSHandler upgrades authenticated HTTP requests to WebSocket connections
// and dispatches client actions to the usecases.
type WSHandler struct {
	hub          *ws.Hub
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	queueUsecase usecase.QueueUsecase
	chatUsecase  usecase.ChatUsecase
	log          *logrus.Logger
	sendBuffer   int
	upgrader     gorillawebsocket.Upgrader
}

func NewWSHandler(
	hub *ws.Hub,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	queueUsecase usecase.QueueUsecase,
	chatUsecase usecase.ChatUsecase,
	log *logrus.Logger,
	sendBuffer int,
) *WSHandler {
	return &WSHandler{
		hub:          hub,
		jwtService:   jwtService,
		redisClient:  redisClient,
		queueUsecase: queueUsecase,
		chatUsecase:  chatUsecase,
		log:          log,
		sendBuffer:   sendBuffer,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS authenticates the request and takes over the connection. Browsers
// cannot set headers on WebSocket requests, so the token may also come from
// the "token" query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("Failed to upgrade websocket connection: %+v", err)
		return
	}

	client := ws.NewClient(h.hub, ws.GorillaConn{Conn: conn}, claims.UserID, h.sendBuffer)
	client.Rooms = append(client.Rooms, ws.UserRoom(claims.UserID))
	h.hub.Register(client)

	// The request context dies with this handler, so actions run on a
	// detached context carrying the authenticated identity.
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, middleware.RoleIDKey, claims.RoleID)

	go client.WritePump()
	client.ReadPump(func(c *ws.Client, msg ws.ClientMessage) {
		h.dispatch(ctx, c, msg)
	})
}

func (h *WSHandler) authenticate(w http.ResponseWriter, r *http.Request) (*jwt.Claims, bool) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		response.Unauthorized(w, "Authentication token is required")
		return nil, false
	}

	claims, err := h.jwtService.ValidateToken(tokenString)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return nil, false
	}

	if claims.TokenType != jwt.AccessToken {
		response.Unauthorized(w, "Invalid token type")
		return nil, false
	}

	tokenKey := fmt.Sprintf("access_token:%s:%s", claims.UserID.String(), claims.TokenID)
	exists, err := h.redisClient.Exists(r.Context(), tokenKey).Result()
	if err != nil {
		response.InternalServerError(w, "Failed to validate token")
		return nil, false
	}
	if exists == 0 {
		response.Unauthorized(w, "Token has been revoked")
		return nil, false
	}

	return claims, true
}

type roomPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

type markReadPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

func (h *WSHandler) dispatch(ctx context.Context, client *ws.Client, msg ws.ClientMessage) {
	switch msg.Action {
	case ws.ActionJoinQueue:
		h.handleJoinQueue(ctx, client, msg.Data)
	case ws.ActionGetQueueStatus:
		h.handleGetQueueStatus(ctx, client)
	case ws.ActionJoinRoom:
		h.handleJoinRoom(ctx, client, msg.Data)
	case ws.ActionLeaveRoom:
		h.handleLeaveRoom(client, msg.Data)
	case ws.ActionSendMessage:
		h.handleSendMessage(ctx, client, msg.Data)
	case ws.ActionMarkRead:
		h.handleMarkRead(ctx, client, msg.Data)
	default:
		h.sendError(client, "Unknown action")
	}
}

func (h *WSHandler) handleJoinQueue(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var req dto.JoinQueueRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			h.sendError(client, "Invalid join-queue payload")
			return
		}
	}

	entry, err := h.queueUsecase.JoinQueue(ctx, &req)
	if err != nil {
		h.sendError(client, h.queueErrorMessage(err))
		return
	}

	scope := entity.QueueScope{DoctorID: req.DoctorID, ClinicID: req.ClinicID}
	h.hub.Join(client, scope.Room())
	h.hub.SendTo(client, ws.Event{Event: ws.EventJoinedQueue, Data: entry})
}

func (h *WSHandler) handleGetQueueStatus(ctx context.Context, client *ws.Client) {
	status, err := h.queueUsecase.GetMyStatus(ctx)
	if err != nil {
		h.sendError(client, h.queueErrorMessage(err))
		return
	}

	h.hub.SendTo(client, ws.Event{Event: ws.EventQueueStatus, Data: status})
}

func (h *WSHandler) handleJoinRoom(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload roomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == uuid.Nil {
		h.sendError(client, "Invalid join-room payload")
		return
	}

	member, err := h.chatUsecase.IsMember(ctx, payload.RoomID, client.UserID)
	if err != nil {
		h.sendError(client, "Failed to join room")
		return
	}
	if !member {
		h.sendError(client, "You are not a member of this chat room")
		return
	}

	h.hub.Join(client, service.ChatRoomChannel(payload.RoomID))
	h.hub.SendTo(client, ws.Event{Event: ws.EventJoinedRoom, Data: roomPayload{RoomID: payload.RoomID}})
}

func (h *WSHandler) handleLeaveRoom(client *ws.Client, data json.RawMessage) {
	var payload roomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == uuid.Nil {
		h.sendError(client, "Invalid leave-room payload")
		return
	}

	h.hub.Leave(client, service.ChatRoomChannel(payload.RoomID))
}

func (h *WSHandler) handleSendMessage(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var req dto.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(client, "Invalid send-message payload")
		return
	}

	// Delivery to the room happens through the notifier inside the usecase.
	if _, err := h.chatUsecase.SendMessage(ctx, &req); err != nil {
		h.sendError(client, h.chatErrorMessage(err))
	}
}

func (h *WSHandler) handleMarkRead(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload markReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == uuid.Nil {
		h.sendError(client, "Invalid mark-read payload")
		return
	}

	if _, err := h.chatUsecase.MarkRead(ctx, payload.RoomID); err != nil {
		h.sendError(client, h.chatErrorMessage(err))
	}
}

func (h *WSHandler) queueErrorMessage(err error) string {
	switch err {
	case usecase.ErrAlreadyQueued:
		return "You are already in a queue"
	case usecase.ErrNotQueued:
		return "You are not in a queue"
	case usecase.ErrDoctorNotFound:
		return "Doctor not found"
	case service.ErrScopeLockNotAcquired:
		return "Queue is busy, please retry"
	default:
		return "Queue operation failed"
	}
}

func (h *WSHandler) chatErrorMessage(err error) string {
	switch err {
	case usecase.ErrChatRoomNotFound:
		return "Chat room not found"
	case usecase.ErrChatRoomAccessDenied:
		return "You are not a member of this chat room"
	default:
		return "Chat operation failed"
	}
}

func (h *WSHandler) sendError(client *ws.Client, message string) {
	h.hub.SendTo(client, ws.Event{Event: ws.EventError, Data: map[string]string{"message": message}})
}
