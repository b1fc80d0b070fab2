package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type RegisterHospitalRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Address  string `json:"address" validate:"required,max=500"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type AddDoctorRequest struct {
	FullName   string          `json:"full_name" validate:"required,min=3,max=255"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=8,max=72"`
	Speciality string          `json:"speciality" validate:"required,max=100"`
	Degree     string          `json:"degree" validate:"omitempty,max=100"`
	Experience string          `json:"experience" validate:"omitempty,max=50"`
	About      string          `json:"about" validate:"omitempty,max=2000"`
	Fees       decimal.Decimal `json:"fees"`
	Address    string          `json:"address" validate:"omitempty,max=500"`
}

// Response DTOs

type HospitalResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type HospitalListResponse struct {
	Hospitals []HospitalResponse `json:"hospitals"`
	Total     int                `json:"total"`
}
