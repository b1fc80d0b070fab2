package repository

import (
	"context"
	"errors"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	domainRepo "github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customSlotRepository struct{}

func NewCustomSlotRepository() domainRepo.CustomSlotRepository {
	return &customSlotRepository{}
}

func (r *customSlotRepository) Upsert(ctx context.Context, db *gorm.DB, custom *entity.CustomSlot) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "slot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"times", "updated_at"}),
		}).
		Create(custom).Error
}

func (r *customSlotRepository) Delete(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (int64, error) {
	result := db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ?", doctorID, date).
		Delete(&entity.CustomSlot{})
	return result.RowsAffected, result.Error
}

func (r *customSlotRepository) Find(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) (*entity.CustomSlot, error) {
	var custom entity.CustomSlot
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ?", doctorID, date).
		First(&custom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &custom, nil
}

func (r *customSlotRepository) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID) ([]entity.CustomSlot, error) {
	var customs []entity.CustomSlot
	err := db.WithContext(ctx).Where("doctor_id = ?", doctorID).Find(&customs).Error
	if err != nil {
		return nil, err
	}
	return customs, nil
}
