package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type DoctorListRequest struct {
	Speciality string
	HospitalID *uuid.UUID
}

type UpdateDoctorProfileRequest struct {
	Fees    *decimal.Decimal `json:"fees"`
	About   *string          `json:"about" validate:"omitempty,max=2000"`
	Address *string          `json:"address" validate:"omitempty,max=500"`
}

type ChangeAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// Response DTOs

type DoctorResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	ImageURL     string     `json:"image_url,omitempty"`
	Speciality   string     `json:"speciality"`
	Degree       string     `json:"degree,omitempty"`
	Experience   string     `json:"experience,omitempty"`
	About        string     `json:"about,omitempty"`
	Fees         string     `json:"fees"`
	Address      string     `json:"address,omitempty"`
	Available    bool       `json:"available"`
	Approved     bool       `json:"approved"`
	Rating       float64    `json:"rating"`
	RatingCount  int        `json:"rating_count"`
	HospitalID   *uuid.UUID `json:"hospital_id,omitempty"`
	HospitalName string     `json:"hospital_name,omitempty"`
}

type ReviewResponse struct {
	PatientID   uuid.UUID `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Rating      int       `json:"rating"`
	Review      string    `json:"review,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type DoctorDetailResponse struct {
	DoctorResponse
	SlotsBooked map[string][]string `json:"slots_booked"`
	CustomSlots map[string][]string `json:"custom_slots"`
	Reviews     []ReviewResponse    `json:"reviews"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
