package usecase

import (
	"context"
	"strings"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RatingUsecase is the only way to rate a doctor: through a completed appointment.
type RatingUsecase interface {
	SubmitRating(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.RateAppointmentRequest) (*dto.AppointmentResponse, error)
}

type ratingUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	reviewRepo        repository.ReviewRepository
	auditService      service.AuditService
	events            service.EventRecorder
	metrics           *metrics.Collector
}

func NewRatingUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	reviewRepo repository.ReviewRepository,
	auditService service.AuditService,
	events service.EventRecorder,
	collector *metrics.Collector,
) RatingUsecase {
	return &ratingUsecase{
		tx:                tx,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		reviewRepo:        reviewRepo,
		auditService:      auditService,
		events:            events,
		metrics:           collector,
	}
}

// SubmitRating stores the rating on the appointment and folds it into the
// doctor's running mean in one transaction.
//
// Checks run in order: NotFound, Forbidden, AlreadyRated, NotEligible, InvalidRating.
func (u *ratingUsecase) SubmitRating(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.RateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.tx.DB(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.PatientID != principal.UserID {
		return nil, ErrForbidden
	}
	if err := checkRatable(appointment); err != nil {
		return nil, err
	}
	if req.Rating < MinRating || req.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	review := strings.TrimSpace(req.Review)

	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.SetRating(ctx, tx, appointmentID, req.Rating, review)
		if err != nil {
			u.log.Warnf("Failed to rate appointment %s: %+v", appointmentID, err)
			return err
		}
		if affected == 0 {
			// Someone changed the appointment since it was read.
			current, err := u.appointmentRepo.FindByID(ctx, tx, appointmentID)
			if err != nil {
				return err
			}
			if current == nil {
				return ErrAppointmentNotFound
			}
			if err := checkRatable(current); err != nil {
				return err
			}
			return ErrAlreadyRated
		}

		if err := u.doctorProfileRepo.ApplyRating(ctx, tx, appointment.DoctorID, req.Rating); err != nil {
			u.log.Warnf("Failed to apply rating to doctor %s: %+v", appointment.DoctorID, err)
			return err
		}

		if err := u.reviewRepo.Create(ctx, tx, &entity.Review{
			DoctorID:      appointment.DoctorID,
			PatientID:     appointment.PatientID,
			AppointmentID: appointment.ID,
			PatientName:   appointment.PatientSnapshot.Name,
			Rating:        req.Rating,
			Review:        review,
		}); err != nil {
			u.log.Warnf("Failed to create review: %+v", err)
			return err
		}

		old := converter.AppointmentToResponse(appointment)
		rating := req.Rating
		appointment.Rating = &rating
		appointment.Review = review
		if err := u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionAppointmentRate, "appointment", appointmentID.String(), old, converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.events.Record(ctx, tx, entity.EventAppointmentRated, appointment)
	})
	if err != nil {
		return nil, err
	}

	u.metrics.Rating()
	u.log.Infof("Appointment rated: id=%s, doctor=%s, rating=%d", appointmentID, appointment.DoctorID, req.Rating)
	return converter.AppointmentToResponse(appointment), nil
}

func checkRatable(a *entity.Appointment) error {
	if a.IsRated() {
		return ErrAlreadyRated
	}
	if !a.IsCompleted || a.Cancelled {
		return ErrNotEligible
	}
	return nil
}
