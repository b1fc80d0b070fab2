package service

import (
	"context"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRecorder appends appointment lifecycle events to the outbox.
type EventRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, eventType string, appointment *entity.Appointment) error
}

type eventRecorder struct {
	outboxRepo repository.OutboxRepository
}

func NewEventRecorder(outboxRepo repository.OutboxRepository) EventRecorder {
	return &eventRecorder{outboxRepo: outboxRepo}
}

func (r *eventRecorder) Record(ctx context.Context, tx *gorm.DB, eventType string, appointment *entity.Appointment) error {
	payload := entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      appointment.DoctorID.String(),
		"patient_id":     appointment.PatientID.String(),
		"slot_date":      appointment.SlotDate.String(),
		"slot_time":      appointment.SlotTime.String(),
		"amount":         appointment.Amount.StringFixed(2),
		"status":         string(appointment.Status()),
	}
	if appointment.Rating != nil {
		payload["rating"] = *appointment.Rating
	}

	return r.outboxRepo.Create(ctx, tx, &entity.OutboxEvent{
		EventID:     uuid.New(),
		EventType:   eventType,
		AggregateID: appointment.ID,
		Payload:     payload,
	})
}
