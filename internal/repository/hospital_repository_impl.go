package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	domainRepo "github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type hospitalRepository struct{}

func NewHospitalRepository() domainRepo.HospitalRepository {
	return &hospitalRepository{}
}

func (r *hospitalRepository) Create(ctx context.Context, db *gorm.DB, hospital *entity.Hospital) error {
	err := db.WithContext(ctx).Create(hospital).Error
	if isDuplicateKeyError(err, "email") {
		return domainRepo.ErrDuplicateEmail
	}
	return err
}

func (r *hospitalRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) FindByStatus(ctx context.Context, db *gorm.DB, status entity.HospitalStatus) ([]entity.Hospital, error) {
	var hospitals []entity.Hospital
	err := db.WithContext(ctx).Preload("User").
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&hospitals).Error
	if err != nil {
		return nil, err
	}
	return hospitals, nil
}

// UpdateStatus only touches pending hospitals so a review cannot be applied twice.
func (r *hospitalRepository) UpdateStatus(ctx context.Context, db *gorm.DB, userID uuid.UUID, status entity.HospitalStatus, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Hospital{}).
		Where("user_id = ? AND status = ?", userID, entity.HospitalStatusPending).
		Updates(map[string]interface{}{"status": status, "reviewed_at": at})
	return result.RowsAffected, result.Error
}
