package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/usecase"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/response"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	validator   *validator.CustomValidator
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, validator *validator.CustomValidator) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		validator:   validator,
	}
}

// ListRooms returns the logged-in user's chat rooms
func (h *ChatHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chatUsecase.ListRooms(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get chat rooms")
		return
	}

	response.Success(w, http.StatusOK, "Chat rooms retrieved successfully", rooms)
}

// GetMessages returns a page of a room's messages, newest first
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	messages, err := h.chatUsecase.GetMessages(r.Context(), roomID, limit, offset)
	if err != nil {
		switch err {
		case usecase.ErrChatRoomNotFound:
			response.NotFound(w, "Chat room not found")
		case usecase.ErrChatRoomAccessDenied:
			response.Forbidden(w, "You are not a member of this chat room")
		default:
			response.InternalServerError(w, "Failed to get messages")
		}
		return
	}

	response.Success(w, http.StatusOK, "Messages retrieved successfully", messages)
}

// SendMessage posts a message to a room
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	message, err := h.chatUsecase.SendMessage(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrChatRoomNotFound:
			response.NotFound(w, "Chat room not found")
		case usecase.ErrChatRoomAccessDenied:
			response.Forbidden(w, "You are not a member of this chat room")
		default:
			response.InternalServerError(w, "Failed to send message")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", message)
}

// MarkRead marks a room's unread messages as read for the caller
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	result, err := h.chatUsecase.MarkRead(r.Context(), roomID)
	if err != nil {
		switch err {
		case usecase.ErrChatRoomNotFound:
			response.NotFound(w, "Chat room not found")
		case usecase.ErrChatRoomAccessDenied:
			response.Forbidden(w, "You are not a member of this chat room")
		default:
			response.InternalServerError(w, "Failed to mark messages read")
		}
		return
	}

	response.Success(w, http.StatusOK, "Messages marked read successfully", result)
}
