package repository

import (
	"context"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HospitalRepository interface {
	Create(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Hospital, error)
	FindByStatus(ctx context.Context, db *gorm.DB, status entity.HospitalStatus) ([]entity.Hospital, error)
	// UpdateStatus moves a pending hospital to status. Returns affected rows.
	UpdateStatus(ctx context.Context, db *gorm.DB, userID uuid.UUID, status entity.HospitalStatus, at time.Time) (int64, error)
}
