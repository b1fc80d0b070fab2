package repository

import (
	"context"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentRepository is the Booking Ledger. The Mark* methods are
// conditional updates: they return 0 affected rows when the guard fails.
type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindByScope returns the scoped ledger, newest first. limit <= 0 means no limit.
	FindByScope(ctx context.Context, db *gorm.DB, scope entity.AppointmentScope, limit int) ([]entity.Appointment, error)
	MarkCancelled(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	MarkCompleted(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error)
	SetRating(ctx context.Context, db *gorm.DB, id uuid.UUID, rating int, review string) (int64, error)
}
