package usecase

import (
	"context"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminUsecase reviews hospital and doctor registrations.
type AdminUsecase interface {
	ListPendingHospitals(ctx context.Context) (*dto.HospitalListResponse, error)
	ApproveHospital(ctx context.Context, principal entity.Principal, hospitalID uuid.UUID) (*dto.HospitalResponse, error)
	RejectHospital(ctx context.Context, principal entity.Principal, hospitalID uuid.UUID) (*dto.HospitalResponse, error)
	ListPendingDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	ApproveDoctor(ctx context.Context, principal entity.Principal, doctorID uuid.UUID) (*dto.DoctorResponse, error)
}

type adminUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	hospitalRepo      repository.HospitalRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	now               func() time.Time
}

func NewAdminUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) AdminUsecase {
	return &adminUsecase{
		tx:                tx,
		log:               log,
		hospitalRepo:      hospitalRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *adminUsecase) ListPendingHospitals(ctx context.Context) (*dto.HospitalListResponse, error) {
	hospitals, err := u.hospitalRepo.FindByStatus(ctx, u.tx.DB(ctx), entity.HospitalStatusPending)
	if err != nil {
		u.log.Warnf("Failed to find pending hospitals: %+v", err)
		return nil, err
	}

	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *adminUsecase) ApproveHospital(ctx context.Context, principal entity.Principal, hospitalID uuid.UUID) (*dto.HospitalResponse, error) {
	return u.review(ctx, principal, hospitalID, entity.HospitalStatusApproved, entity.AuditActionHospitalApprove)
}

func (u *adminUsecase) RejectHospital(ctx context.Context, principal entity.Principal, hospitalID uuid.UUID) (*dto.HospitalResponse, error) {
	return u.review(ctx, principal, hospitalID, entity.HospitalStatusRejected, entity.AuditActionHospitalReject)
}

// review moves a pending hospital to status. A hospital is reviewed once.
func (u *adminUsecase) review(ctx context.Context, principal entity.Principal, hospitalID uuid.UUID, status entity.HospitalStatus, action string) (*dto.HospitalResponse, error) {
	var hospital *entity.Hospital
	err := u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		hospital, err = u.hospitalRepo.FindByUserID(ctx, tx, hospitalID)
		if err != nil {
			u.log.Warnf("Failed to find hospital %s: %+v", hospitalID, err)
			return err
		}
		if hospital == nil {
			return ErrHospitalNotFound
		}

		reviewedAt := u.now()
		affected, err := u.hospitalRepo.UpdateStatus(ctx, tx, hospitalID, status, reviewedAt)
		if err != nil {
			u.log.Warnf("Failed to update hospital %s status: %+v", hospitalID, err)
			return err
		}
		if affected == 0 {
			return ErrAlreadyReviewed
		}

		old := hospital.Status
		hospital.Status = status
		hospital.ReviewedAt = &reviewedAt

		return u.auditService.LogUpdate(ctx, tx, principal.Ref(), action, "hospital", hospitalID.String(),
			map[string]string{"status": string(old)}, map[string]string{"status": string(status)})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Hospital reviewed: id=%s, status=%s", hospitalID, status)
	return converter.HospitalToResponse(hospital), nil
}

func (u *adminUsecase) ListPendingDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(ctx, u.tx.DB(ctx), &entity.DoctorFilter{IncludeUnapproved: true})
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	pending := make([]entity.DoctorProfile, 0, len(profiles))
	for _, p := range profiles {
		if !p.Approved {
			pending = append(pending, p)
		}
	}

	doctors := converter.DoctorsToResponses(pending)
	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *adminUsecase) ApproveDoctor(ctx context.Context, principal entity.Principal, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
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

		affected, err := u.doctorProfileRepo.Approve(ctx, tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to approve doctor %s: %+v", doctorID, err)
			return err
		}
		if affected == 0 {
			return ErrAlreadyReviewed
		}
		profile.Approved = true

		return u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionDoctorApprove, "doctor_profile", doctorID.String(),
			map[string]bool{"approved": false}, map[string]bool{"approved": true})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Doctor approved: id=%s", doctorID)
	return converter.DoctorToResponse(profile), nil
}
