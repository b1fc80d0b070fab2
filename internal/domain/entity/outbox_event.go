package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment lifecycle event types
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentRated     = "appointment.rated"
	EventAppointmentPaid      = "appointment.paid"
)

// OutboxEvent is written in the same transaction as the change it describes
// and relayed to the broker afterwards.
type OutboxEvent struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	EventType   string     `gorm:"type:varchar(100);not null" json:"event_type"`
	AggregateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	Payload     JSON       `gorm:"type:jsonb" json:"payload"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	PublishedAt *time.Time `gorm:"index" json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
