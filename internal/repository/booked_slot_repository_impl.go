package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	domainRepo "github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookedSlotRepository struct{}

func NewBookedSlotRepository() domainRepo.BookedSlotRepository {
	return &bookedSlotRepository{}
}

// Reserve relies on the (doctor_id, slot_date, slot_time) primary key:
// INSERT ... ON CONFLICT DO NOTHING affects no rows when the slot is taken.
func (r *bookedSlotRepository) Reserve(ctx context.Context, db *gorm.DB, booked *entity.BookedSlot) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(booked)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *bookedSlotRepository) Release(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (int64, error) {
	result := db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", doctorID, date, t).
		Delete(&entity.BookedSlot{})
	return result.RowsAffected, result.Error
}

func (r *bookedSlotRepository) IsReserved(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (bool, error) {
	var booked entity.BookedSlot
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", doctorID, date, t).
		First(&booked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *bookedSlotRepository) FindTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, error) {
	var times []slot.TimeSlot
	err := db.WithContext(ctx).Model(&entity.BookedSlot{}).
		Where("doctor_id = ? AND slot_date = ?", doctorID, date).
		Order("created_at ASC").
		Pluck("slot_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *bookedSlotRepository) FindByDoctor(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, from time.Time) ([]entity.BookedSlot, error) {
	var slots []entity.BookedSlot
	err := db.WithContext(ctx).
		Where("doctor_id = ? AND day >= ?", doctorID, from).
		Order("day ASC, created_at ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *bookedSlotRepository) FindUpcoming(ctx context.Context, db *gorm.DB, from time.Time, limit, offset int) ([]entity.BookedSlot, error) {
	var slots []entity.BookedSlot
	err := db.WithContext(ctx).
		Where("day >= ?", from).
		Order("doctor_id, slot_date, slot_time").
		Limit(limit).
		Offset(offset).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
