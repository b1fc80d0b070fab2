package dto

import "github.com/google/uuid"

type SetCustomSlotsRequest struct {
	SlotDate string   `json:"slot_date" validate:"required,datekey"`
	Times    []string `json:"times" validate:"required,min=1,dive,timeslot"`
}

type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type DaySlotsResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	SlotDate string         `json:"slot_date"`
	Custom   bool           `json:"custom"`
	Slots    []SlotResponse `json:"slots"`
}

type CustomSlotsResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	SlotDate string    `json:"slot_date"`
	Times    []string  `json:"times"`
}
