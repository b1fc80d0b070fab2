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

// activeSlotIndex is the partial unique index over non-cancelled appointments.
const activeSlotIndex = "uq_appointments_active_slot"

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	err := db.WithContext(ctx).Create(appointment).Error
	if isDuplicateKeyError(err, activeSlotIndex) {
		return domainRepo.ErrDuplicateSlot
	}
	return err
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByScope(ctx context.Context, db *gorm.DB, scope entity.AppointmentScope, limit int) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).Model(&entity.Appointment{})

	if scope.DoctorID != nil {
		query = query.Where("doctor_id = ?", *scope.DoctorID)
	}
	if scope.HospitalID != nil {
		query = query.Where("hospital_id = ?", *scope.HospitalID)
	}
	if scope.PatientID != nil {
		query = query.Where("patient_id = ?", *scope.PatientID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// MarkCancelled atomically cancels an appointment ONLY if it's not already cancelled.
// Returns affected rows: 1 = success, 0 = already cancelled (prevents double-cancel race).
func (r *appointmentRepository) MarkCancelled(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ?", id, false).
		Updates(map[string]interface{}{"cancelled": true, "cancelled_at": at})
	return result.RowsAffected, result.Error
}

// MarkCompleted only completes active appointments.
func (r *appointmentRepository) MarkCompleted(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND is_completed = ?", id, false, false).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": at})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) MarkPaid(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND payment = ?", id, false, false).
		Updates(map[string]interface{}{"payment": true, "paid_at": at})
	return result.RowsAffected, result.Error
}

// SetRating stores the rating only on a completed, active, unrated appointment.
func (r *appointmentRepository) SetRating(ctx context.Context, db *gorm.DB, id uuid.UUID, rating int, review string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND rating IS NULL AND is_completed = ? AND cancelled = ?", id, true, false).
		Updates(map[string]interface{}{"rating": rating, "review": review})
	return result.RowsAffected, result.Error
}
