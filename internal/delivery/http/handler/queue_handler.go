package handler

import (
	"encoding/json"
	"net/http"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"
	"github.com/harsh11x/pulsecal.web-sub000/internal/usecase"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/response"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
	validator    *validator.CustomValidator
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase, validator *validator.CustomValidator) *QueueHandler {
	return &QueueHandler{
		queueUsecase: queueUsecase,
		validator:    validator,
	}
}

// JoinQueue admits the logged-in patient into a queue
func (h *QueueHandler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entry, err := h.queueUsecase.JoinQueue(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrAlreadyQueued:
			response.Conflict(w, "You are already waiting in a queue")
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case service.ErrScopeLockNotAcquired:
			response.ServiceUnavailable(w, "Queue is busy, please retry")
		default:
			response.InternalServerError(w, "Failed to join queue")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Joined queue successfully", entry)
}

// GetQueue returns the waiting line for a scope
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScope(w, r)
	if !ok {
		return
	}

	queue, err := h.queueUsecase.GetQueue(r.Context(), scope)
	if err != nil {
		response.InternalServerError(w, "Failed to get queue")
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

// GetMyStatus returns the logged-in patient's place in line
func (h *QueueHandler) GetMyStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.queueUsecase.GetMyStatus(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrNotQueued:
			response.NotFound(w, "You are not waiting in any queue")
		default:
			response.InternalServerError(w, "Failed to get queue status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue status retrieved successfully", status)
}

// CallNext promotes the front of the queue. Staff only.
func (h *QueueHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	scope, ok := parseScope(w, r)
	if !ok {
		return
	}

	entry, err := h.queueUsecase.CallNext(r.Context(), scope)
	if err != nil {
		switch err {
		case usecase.ErrQueueEmpty:
			response.NotFound(w, "Queue is empty")
		case service.ErrScopeLockNotAcquired:
			response.ServiceUnavailable(w, "Queue is busy, please retry")
		default:
			response.InternalServerError(w, "Failed to call next patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient called successfully", entry)
}

// Complete marks a called entry as done. Staff only.
func (h *QueueHandler) Complete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid queue entry ID", nil)
		return
	}

	entry, err := h.queueUsecase.Complete(r.Context(), entryID)
	if err != nil {
		switch err {
		case usecase.ErrQueueEntryNotFound:
			response.NotFound(w, "Queue entry not found")
		case usecase.ErrInvalidQueueTransition:
			response.Conflict(w, "Queue entry is not in progress")
		default:
			response.InternalServerError(w, "Failed to complete queue entry")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue entry completed successfully", entry)
}

// Remove cancels an entry; patients may leave their own spot
func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entryID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid queue entry ID", nil)
		return
	}

	err = h.queueUsecase.Remove(r.Context(), entryID)
	if err != nil {
		switch err {
		case usecase.ErrQueueEntryNotFound:
			response.NotFound(w, "Queue entry not found")
		case usecase.ErrQueueEntryNotOwned:
			response.Forbidden(w, "Queue entry does not belong to you")
		case usecase.ErrInvalidQueueTransition:
			response.Conflict(w, "Queue entry has already left the queue")
		case service.ErrScopeLockNotAcquired:
			response.ServiceUnavailable(w, "Queue is busy, please retry")
		default:
			response.InternalServerError(w, "Failed to remove queue entry")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue entry removed successfully", nil)
}

// parseScope reads optional doctor_id and clinic_id query parameters. Both
// absent addresses the global walk-in queue.
func parseScope(w http.ResponseWriter, r *http.Request) (entity.QueueScope, bool) {
	var scope entity.QueueScope

	if raw := r.URL.Query().Get("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
			return scope, false
		}
		scope.DoctorID = &id
	}

	if raw := r.URL.Query().Get("clinic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid clinic ID", nil)
			return scope, false
		}
		scope.ClinicID = &id
	}

	return scope, true
}
