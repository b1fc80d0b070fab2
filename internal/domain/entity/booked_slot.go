package entity

import (
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
)

// BookedSlot marks a (doctor, date, time) as consumed. The composite primary
// key is what makes a reservation insert-if-absent.
type BookedSlot struct {
	DoctorID      uuid.UUID     `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	SlotDate      slot.DateKey  `gorm:"type:varchar(10);primaryKey" json:"slot_date"`
	SlotTime      slot.TimeSlot `gorm:"type:varchar(8);primaryKey" json:"slot_time"`
	Day           time.Time     `gorm:"type:date;not null;index" json:"day"`
	AppointmentID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (BookedSlot) TableName() string {
	return "booked_slots"
}

// CustomSlot overrides the default schedule of a doctor for one date.
type CustomSlot struct {
	DoctorID  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	SlotDate  slot.DateKey    `gorm:"type:varchar(10);primaryKey" json:"slot_date"`
	Times     []slot.TimeSlot `gorm:"type:jsonb;serializer:json;not null" json:"times"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CustomSlot) TableName() string {
	return "custom_slots"
}
