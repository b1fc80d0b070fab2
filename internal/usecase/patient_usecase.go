package usecase

import (
	"context"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PatientUsecase interface {
	GetMyProfile(ctx context.Context, patientID uuid.UUID) (*dto.PatientProfileResponse, error)
	UpdateMyProfile(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error)
}

type patientUsecase struct {
	tx                 repository.Transactor
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		tx:                 tx,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientUsecase) GetMyProfile(ctx context.Context, patientID uuid.UUID) (*dto.PatientProfileResponse, error) {
	profile, err := u.load(ctx, u.tx.DB(ctx), patientID)
	if err != nil {
		return nil, err
	}
	return converter.PatientProfileToResponse(profile), nil
}

// UpdateMyProfile edits the live profile. Snapshots on existing appointments
// keep the values captured at booking.
func (u *patientUsecase) UpdateMyProfile(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.PatientProfileResponse, error) {
	var profile *entity.PatientProfile
	err := u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		profile, err = u.load(ctx, tx, patientID)
		if err != nil {
			return err
		}
		oldValue := converter.PatientProfileToResponse(profile)

		if req.FullName != nil {
			profile.User.FullName = *req.FullName
			if err := u.userRepo.Update(ctx, tx, &profile.User); err != nil {
				u.log.Warnf("Failed to update user %s: %+v", patientID, err)
				return err
			}
		}
		if req.PhoneNumber != nil {
			profile.PhoneNumber = *req.PhoneNumber
		}
		if req.Address != nil {
			profile.Address = *req.Address
		}
		if req.Gender != nil {
			profile.Gender = *req.Gender
		}

		if err := u.patientProfileRepo.Update(ctx, tx, profile); err != nil {
			u.log.Warnf("Failed to update patient profile %s: %+v", patientID, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, &patientID, entity.AuditActionProfileUpdate, "patient_profile", patientID.String(), oldValue, converter.PatientProfileToResponse(profile))
	})
	if err != nil {
		return nil, err
	}

	return converter.PatientProfileToResponse(profile), nil
}

// load returns the patient's profile, creating an empty one for a patient
// whose account exists without it.
func (u *patientUsecase) load(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (*entity.PatientProfile, error) {
	profile, err := u.patientProfileRepo.FindByUserID(ctx, db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", patientID, err)
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	user, err := u.userRepo.FindByID(ctx, db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", patientID, err)
		return nil, err
	}
	if user == nil || user.RoleID != entity.RoleIDPatient {
		return nil, ErrPatientNotFound
	}

	return &entity.PatientProfile{UserID: patientID, User: *user}, nil
}
