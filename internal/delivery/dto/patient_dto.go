package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdatePatientProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=3,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=M F"`
}

type PatientProfileResponse struct {
	UserID      uuid.UUID  `json:"user_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Address     string     `json:"address,omitempty"`
}
