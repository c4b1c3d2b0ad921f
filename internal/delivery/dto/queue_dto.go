package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type JoinQueueRequest struct {
	DoctorID *uuid.UUID `json:"doctor_id" validate:"omitempty"`
	ClinicID *uuid.UUID `json:"clinic_id" validate:"omitempty"`
}

// Response DTOs

type QueueEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	PatientID   uuid.UUID  `json:"patient_id"`
	PatientName string     `json:"patient_name,omitempty"`
	DoctorID    *uuid.UUID `json:"doctor_id,omitempty"`
	ClinicID    *uuid.UUID `json:"clinic_id,omitempty"`
	Position    int        `json:"position"`
	Status      string     `json:"status"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
	Room    string               `json:"room"`
}

type QueueStatusResponse struct {
	EntryID              uuid.UUID `json:"entry_id"`
	Position             int       `json:"position"`
	AheadCount           int       `json:"ahead_count"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
	Status               string    `json:"status"`
}
