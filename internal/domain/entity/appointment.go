package entity

import (
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ConsultationMode string

const (
	ConsultationOnline  ConsultationMode = "online"
	ConsultationOffline ConsultationMode = "offline"
)

// AppointmentStatus is derived from the lifecycle flags for display.
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusPaid      AppointmentStatus = "paid"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// DoctorSnapshot is the doctor as shown at booking time. It is never refreshed.
type DoctorSnapshot struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	ImageURL     string `json:"image_url,omitempty"`
	Speciality   string `json:"speciality"`
	Degree       string `json:"degree,omitempty"`
	Address      string `json:"address,omitempty"`
	Fees         string `json:"fees"`
	HospitalName string `json:"hospital_name,omitempty"`
}

// PatientSnapshot is the patient as shown at booking time. It is never refreshed.
type PatientSnapshot struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// Appointment is a Booking Ledger entry. Entries are never deleted.
type Appointment struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"patient_id"`
	HospitalID       *uuid.UUID       `gorm:"type:uuid;index" json:"hospital_id,omitempty"`
	SlotDate         slot.DateKey     `gorm:"type:varchar(10);not null" json:"slot_date"`
	SlotTime         slot.TimeSlot    `gorm:"type:varchar(8);not null" json:"slot_time"`
	Amount           decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	ConsultationMode ConsultationMode `gorm:"type:varchar(10);not null" json:"consultation_mode"`
	Description      string           `gorm:"type:text" json:"description,omitempty"`
	VoiceNoteURL     string           `gorm:"type:text" json:"voice_note_url,omitempty"`
	MeetingLink      string           `gorm:"type:text" json:"meeting_link,omitempty"`
	DoctorSnapshot   DoctorSnapshot   `gorm:"type:jsonb;serializer:json;not null" json:"doctor_snapshot"`
	PatientSnapshot  PatientSnapshot  `gorm:"type:jsonb;serializer:json;not null" json:"patient_snapshot"`
	Cancelled        bool             `gorm:"not null;default:false" json:"cancelled"`
	Payment          bool             `gorm:"not null;default:false" json:"payment"`
	IsCompleted      bool             `gorm:"not null;default:false" json:"is_completed"`
	Rating           *int             `json:"rating,omitempty"`
	Review           string           `gorm:"type:text" json:"review,omitempty"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	CreatedAt        time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) Status() AppointmentStatus {
	switch {
	case a.Cancelled:
		return AppointmentStatusCancelled
	case a.IsCompleted:
		return AppointmentStatusCompleted
	case a.Payment:
		return AppointmentStatusPaid
	}
	return AppointmentStatusBooked
}

// Earning reports whether the amount counts towards dashboard earnings.
func (a *Appointment) Earning() bool {
	return a.IsCompleted || a.Payment
}

func (a *Appointment) IsRated() bool {
	return a.Rating != nil
}
