package entity

import (
	"time"

	"github.com/google/uuid"
)

// Review is a patient's rating of a completed appointment, listed on the doctor profile.
type Review struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null" json:"patient_id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	PatientName   string    `gorm:"type:varchar(255)" json:"patient_name"`
	Rating        int       `gorm:"not null" json:"rating"`
	Review        string    `gorm:"type:text" json:"review,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}
