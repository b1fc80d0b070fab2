package repository

import (
	"context"
	"errors"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	domainRepo "github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	err := db.WithContext(ctx).Create(profile).Error
	if isDuplicateKeyError(err, "email") {
		return domainRepo.ErrDuplicateEmail
	}
	return err
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.WithContext(ctx).Preload("User").Preload("Hospital").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.WithContext(ctx).Preload("User").Preload("Hospital")

	if filter != nil {
		if !filter.IncludeUnapproved {
			query = query.Where("approved = ?", true)
		}
		if filter.Speciality != "" {
			query = query.Where("speciality ILIKE ?", "%"+filter.Speciality+"%")
		}
		if filter.HospitalID != nil {
			query = query.Where("hospital_id = ?", *filter.HospitalID)
		}
	} else {
		query = query.Where("approved = ?", true)
	}

	if err := query.Order("rating DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.WithContext(ctx).Omit("User", "Hospital").Save(profile).Error
}

func (r *doctorProfileRepository) SetAvailability(ctx context.Context, db *gorm.DB, userID uuid.UUID, available bool) error {
	return db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Update("available", available).Error
}

func (r *doctorProfileRepository) Approve(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ? AND approved = ?", userID, false).
		Update("approved", true)
	return result.RowsAffected, result.Error
}

// ApplyRating computes the streaming mean in SQL so concurrent ratings of the
// same doctor never read a stale average.
func (r *doctorProfileRepository) ApplyRating(ctx context.Context, db *gorm.DB, userID uuid.UUID, value int) error {
	return db.WithContext(ctx).Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", value),
			"rating_count": gorm.Expr("rating_count + 1"),
		}).Error
}

func (r *doctorProfileRepository) Count(ctx context.Context, db *gorm.DB, hospitalID *uuid.UUID) (int64, error) {
	var count int64
	query := db.WithContext(ctx).Model(&entity.DoctorProfile{})
	if hospitalID != nil {
		query = query.Where("hospital_id = ?", *hospitalID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
