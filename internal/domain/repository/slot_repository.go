package repository

import (
	"context"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookedSlotRepository interface {
	// Reserve inserts the slot unless it already exists. Returns false when taken.
	Reserve(ctx context.Context, db *gorm.DB, booked *entity.BookedSlot) (bool, error)
	// Release removes the slot. Missing slots are not an error.
	Release(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (int64, error)
	IsReserved(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (bool, error)
	FindTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, error)
	FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.BookedSlot, error)
	// FindUpcoming pages through every slot on or after from, ordered by key.
	FindUpcoming(ctx context.Context, db *gorm.DB, from time.Time, limit, offset int) ([]entity.BookedSlot, error)
}

type CustomSlotRepository interface {
	Upsert(ctx context.Context, db *gorm.DB, custom *entity.CustomSlot) error
	Delete(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (int64, error)
	Find(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (*entity.CustomSlot, error)
	FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.CustomSlot, error)
}
