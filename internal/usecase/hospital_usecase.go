package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type HospitalUsecase interface {
	RegisterHospital(ctx context.Context, req *dto.RegisterHospitalRequest) (*dto.HospitalResponse, error)
	GetMyHospital(ctx context.Context, principal entity.Principal) (*dto.HospitalResponse, error)
	AddDoctor(ctx context.Context, principal entity.Principal, req *dto.AddDoctorRequest) (*dto.DoctorResponse, error)
	ListMyDoctors(ctx context.Context, principal entity.Principal) (*dto.DoctorListResponse, error)
}

type hospitalUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	hospitalRepo      repository.HospitalRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewHospitalUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) HospitalUsecase {
	return &hospitalUsecase{
		tx:                tx,
		log:               log,
		hospitalRepo:      hospitalRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

// RegisterHospital creates the hospital account in pending status.
func (u *hospitalUsecase) RegisterHospital(ctx context.Context, req *dto.RegisterHospitalRequest) (*dto.HospitalResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	userID := uuid.New()
	hospital := &entity.Hospital{
		UserID:  userID,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Status:  entity.HospitalStatusPending,
		User: entity.User{
			ID:       userID,
			RoleID:   entity.RoleIDHospital,
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Password: string(hashedPassword),
			FullName: req.Name,
		},
	}

	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := u.hospitalRepo.Create(ctx, tx, hospital); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailExists
			}
			u.log.Warnf("Failed to create hospital: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionHospitalRegister, "hospital", userID.String(), converter.HospitalToResponse(hospital))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Hospital registered: id=%s, name=%s", userID, hospital.Name)
	return converter.HospitalToResponse(hospital), nil
}

func (u *hospitalUsecase) GetMyHospital(ctx context.Context, principal entity.Principal) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByUserID(ctx, u.tx.DB(ctx), principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %s: %+v", principal.UserID, err)
		return nil, err
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}
	return converter.HospitalToResponse(hospital), nil
}

// AddDoctor creates a doctor account owned by the hospital. The doctor is
// available but cannot be booked until an admin approves it.
func (u *hospitalUsecase) AddDoctor(ctx context.Context, principal entity.Principal, req *dto.AddDoctorRequest) (*dto.DoctorResponse, error) {
	if req.Fees.IsNegative() {
		return nil, ErrInvalidFees
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var profile *entity.DoctorProfile
	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		hospital, err := u.hospitalRepo.FindByUserID(ctx, tx, principal.UserID)
		if err != nil {
			u.log.Warnf("Failed to find hospital %s: %+v", principal.UserID, err)
			return err
		}
		if hospital == nil {
			return ErrHospitalNotFound
		}
		if !hospital.IsApproved() {
			return ErrHospitalNotApproved
		}

		doctorID := uuid.New()
		hospitalID := hospital.UserID
		profile = &entity.DoctorProfile{
			UserID:     doctorID,
			HospitalID: &hospitalID,
			Speciality: req.Speciality,
			Degree:     req.Degree,
			Experience: req.Experience,
			About:      req.About,
			Fees:       req.Fees,
			Address:    req.Address,
			Available:  true,
			Approved:   false,
			User: entity.User{
				ID:       doctorID,
				RoleID:   entity.RoleIDDoctor,
				Email:    strings.ToLower(strings.TrimSpace(req.Email)),
				Password: string(hashedPassword),
				FullName: req.FullName,
			},
		}

		if err := u.doctorProfileRepo.Create(ctx, tx, profile); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailExists
			}
			u.log.Warnf("Failed to create doctor: %+v", err)
			return err
		}
		profile.Hospital = hospital

		return u.auditService.LogCreate(ctx, tx, principal.Ref(), entity.AuditActionDoctorCreate, "doctor_profile", doctorID.String(), converter.DoctorToResponse(profile))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Doctor added: id=%s, hospital=%s", profile.UserID, principal.UserID)
	return converter.DoctorToResponse(profile), nil
}

// ListMyDoctors includes doctors still waiting for approval.
func (u *hospitalUsecase) ListMyDoctors(ctx context.Context, principal entity.Principal) (*dto.DoctorListResponse, error) {
	hospitalID := principal.UserID
	profiles, err := u.doctorProfileRepo.FindAll(ctx, u.tx.DB(ctx), &entity.DoctorFilter{
		HospitalID:        &hospitalID,
		IncludeUnapproved: true,
	})
	if err != nil {
		u.log.Warnf("Failed to find doctors of hospital %s: %+v", hospitalID, err)
		return nil, err
	}

	doctors := converter.DoctorsToResponses(profiles)
	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}
