package dto

import (
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID         uuid.UUID `json:"doctor_id" validate:"required"`
	SlotDate         string    `json:"slot_date" validate:"required,datekey"`
	SlotTime         string    `json:"slot_time" validate:"required,timeslot"`
	ConsultationMode string    `json:"consultation_mode" validate:"required,oneof=online offline"`
	Description      string    `json:"description" validate:"max=2000"`

	// VoiceNote is set from a multipart upload.
	VoiceNote *gateway.Upload `json:"-" validate:"-"`
}

type RateAppointmentRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review" validate:"max=1000"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID               uuid.UUID              `json:"id"`
	DoctorID         uuid.UUID              `json:"doctor_id"`
	PatientID        uuid.UUID              `json:"patient_id"`
	SlotDate         string                 `json:"slot_date"`
	SlotTime         string                 `json:"slot_time"`
	Amount           string                 `json:"amount"`
	ConsultationMode string                 `json:"consultation_mode"`
	Description      string                 `json:"description,omitempty"`
	VoiceNoteURL     string                 `json:"voice_note_url,omitempty"`
	MeetingLink      string                 `json:"meeting_link,omitempty"`
	Status           string                 `json:"status"`
	Cancelled        bool                   `json:"cancelled"`
	Payment          bool                   `json:"payment"`
	IsCompleted      bool                   `json:"is_completed"`
	Rating           *int                   `json:"rating,omitempty"`
	Review           string                 `json:"review,omitempty"`
	Doctor           entity.DoctorSnapshot  `json:"doctor"`
	Patient          entity.PatientSnapshot `json:"patient"`
	CreatedAt        time.Time              `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
