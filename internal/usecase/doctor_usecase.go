package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorUsecase interface {
	ListDoctors(ctx context.Context, req *dto.DoctorListRequest) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDetailResponse, error)
	UpdateSelfProfile(ctx context.Context, principal entity.Principal, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
	ChangeAvailability(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.ChangeAvailabilityRequest) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	bookedSlotRepo    repository.BookedSlotRepository
	customSlotRepo    repository.CustomSlotRepository
	reviewRepo        repository.ReviewRepository
	auditService      service.AuditService
	loc               *time.Location
	now               func() time.Time
}

func NewDoctorUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	bookedSlotRepo repository.BookedSlotRepository,
	customSlotRepo repository.CustomSlotRepository,
	reviewRepo repository.ReviewRepository,
	auditService service.AuditService,
	loc *time.Location,
) DoctorUsecase {
	return &doctorUsecase{
		tx:                tx,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		bookedSlotRepo:    bookedSlotRepo,
		customSlotRepo:    customSlotRepo,
		reviewRepo:        reviewRepo,
		auditService:      auditService,
		loc:               loc,
		now:               time.Now,
	}
}

// ListDoctors returns approved doctors, best rated first.
func (u *doctorUsecase) ListDoctors(ctx context.Context, req *dto.DoctorListRequest) (*dto.DoctorListResponse, error) {
	filter := &entity.DoctorFilter{
		Speciality: strings.TrimSpace(req.Speciality),
		HospitalID: req.HospitalID,
	}

	profiles, err := u.doctorProfileRepo.FindAll(ctx, u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorsToResponses(profiles)
	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

// GetDoctor returns the public profile with booked and custom slots from today on.
func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorDetailResponse, error) {
	db := u.tx.DB(ctx)

	profile, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil || !profile.Approved {
		return nil, ErrDoctorNotFound
	}

	today := slot.DateKeyOf(u.now().In(u.loc)).Time(u.loc)
	booked, err := u.bookedSlotRepo.FindByDoctor(ctx, db, doctorID, today)
	if err != nil {
		u.log.Warnf("Failed to find booked slots of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	customs, err := u.customSlotRepo.FindByDoctor(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find custom slots of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	reviews, err := u.reviewRepo.FindByDoctorID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find reviews of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.DoctorDetailResponse{
		DoctorResponse: *converter.DoctorToResponse(profile),
		SlotsBooked:    converter.BookedSlotsToMap(booked),
		CustomSlots:    converter.CustomSlotsToMap(customs),
		Reviews:        converter.ReviewsToResponses(reviews),
	}, nil
}

// UpdateSelfProfile edits the doctor's own profile. Existing appointments keep
// the fee and snapshot they were booked with.
func (u *doctorUsecase) UpdateSelfProfile(ctx context.Context, principal entity.Principal, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	if req.Fees != nil && req.Fees.IsNegative() {
		return nil, ErrInvalidFees
	}

	var profile *entity.DoctorProfile
	err := u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = u.doctorProfileRepo.FindByUserID(ctx, tx, principal.UserID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", principal.UserID, err)
			return err
		}
		if profile == nil {
			return ErrDoctorNotFound
		}

		oldValue := converter.DoctorToResponse(profile)

		if req.Fees != nil {
			profile.Fees = *req.Fees
		}
		if req.About != nil {
			profile.About = *req.About
		}
		if req.Address != nil {
			profile.Address = *req.Address
		}

		if err := u.doctorProfileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update doctor profile: %+v", err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionDoctorUpdate, "doctor_profile", profile.UserID.String(), oldValue, converter.DoctorToResponse(profile))
	})
	if err != nil {
		return nil, err
	}

	return converter.DoctorToResponse(profile), nil
}

// ChangeAvailability flips the doctor's global booking switch.
func (u *doctorUsecase) ChangeAvailability(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.ChangeAvailabilityRequest) (*dto.DoctorResponse, error) {
	var profile *entity.DoctorProfile
	err := u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = u.doctorProfileRepo.FindByUserID(ctx, tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
			return err
		}
		if profile == nil {
			return ErrDoctorNotFound
		}
		if !profile.ManagedBy(principal) {
			return ErrForbidden
		}

		old := profile.Available
		if err := u.doctorProfileRepo.SetAvailability(ctx, tx, doctorID, *req.Available); err != nil {
			u.log.Warnf("Failed to change availability of doctor %s: %+v", doctorID, err)
			return err
		}
		profile.Available = *req.Available

		return u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionDoctorAvailability, "doctor_profile", doctorID.String(),
			map[string]bool{"available": old}, map[string]bool{"available": profile.Available})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Doctor availability changed: doctor=%s, available=%t", doctorID, profile.Available)
	return converter.DoctorToResponse(profile), nil
}
