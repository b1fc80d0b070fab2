package repository

import (
	"context"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error
	SetAvailability(ctx context.Context, db *gorm.DB, userID uuid.UUID, available bool) error
	Approve(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	// ApplyRating folds value into the stored running mean in a single UPDATE.
	ApplyRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, value int) error
	Count(ctx context.Context, db *gorm.DB, hospitalID *uuid.UUID) (int64, error)
}
