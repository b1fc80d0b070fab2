package usecase

import (
	"context"
	"time"

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

type AppointmentUsecase interface {
	GetAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListMyAppointments(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error)
	ListHospitalAppointments(ctx context.Context, hospitalID uuid.UUID) (*dto.AppointmentListResponse, error)
	ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	Cancel(ctx context.Context, principal entity.Principal, id uuid.UUID) error
	MarkCompleted(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	bookedSlotRepo  repository.BookedSlotRepository
	slotCache       service.SlotCache
	auditService    service.AuditService
	events          service.EventRecorder
	metrics         *metrics.Collector
	loc             *time.Location
	now             func() time.Time
}

func NewAppointmentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	bookedSlotRepo repository.BookedSlotRepository,
	slotCache service.SlotCache,
	auditService service.AuditService,
	events service.EventRecorder,
	collector *metrics.Collector,
	loc *time.Location,
) AppointmentUsecase {
	return &appointmentUsecase{
		tx:              tx,
		log:             log,
		appointmentRepo: appointmentRepo,
		bookedSlotRepo:  bookedSlotRepo,
		slotCache:       slotCache,
		auditService:    auditService,
		events:          events,
		metrics:         collector,
		loc:             loc,
		now:             time.Now,
	}
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.find(ctx, u.tx.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canView(principal, appointment) {
		return nil, ErrForbidden
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListMyAppointments(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, entity.AppointmentScope{PatientID: &patientID})
}

func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, entity.AppointmentScope{DoctorID: &doctorID})
}

func (u *appointmentUsecase) ListHospitalAppointments(ctx context.Context, hospitalID uuid.UUID) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, entity.AppointmentScope{HospitalID: &hospitalID})
}

func (u *appointmentUsecase) ListAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, entity.AppointmentScope{})
}

func (u *appointmentUsecase) list(ctx context.Context, scope entity.AppointmentScope) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByScope(ctx, u.tx.DB(ctx), scope, 0)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// Cancel soft-cancels the appointment and frees its slot.
//
// Cancelling an already cancelled appointment succeeds without side effects.
// The conditional update makes sure only one of two racing cancels releases the slot.
func (u *appointmentUsecase) Cancel(ctx context.Context, principal entity.Principal, id uuid.UUID) error {
	appointment, err := u.find(ctx, u.tx.DB(ctx), id)
	if err != nil {
		return err
	}
	if !canCancel(principal, appointment) {
		return ErrForbidden
	}
	if appointment.Cancelled {
		return nil
	}

	released := false
	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.MarkCancelled(ctx, tx, id, u.now())
		if err != nil {
			u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			// Lost the race to another cancel.
			return nil
		}

		if _, err := u.bookedSlotRepo.Release(ctx, tx, appointment.DoctorID, appointment.SlotDate, appointment.SlotTime); err != nil {
			u.log.Warnf("Failed to release slot of appointment %s: %+v", id, err)
			return err
		}
		released = true

		old := converter.AppointmentToResponse(appointment)
		appointment.Cancelled = true
		if err := u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionAppointmentCancel, "appointment", id.String(), old, converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.events.Record(ctx, tx, entity.EventAppointmentCancelled, appointment)
	})
	if err != nil {
		return err
	}
	if !released {
		return nil
	}

	if u.slotCache != nil {
		if err := u.slotCache.MarkReleased(ctx, appointment.DoctorID, appointment.SlotDate, appointment.SlotTime); err != nil {
			u.log.Warnf("Failed to release slot in cache (non-fatal): %+v", err)
			if err := u.slotCache.Invalidate(ctx, appointment.DoctorID, appointment.SlotDate); err != nil {
				u.log.Errorf("Failed to invalidate slot cache for doctor %s on %s: %+v", appointment.DoctorID, appointment.SlotDate, err)
			}
		}
	}

	u.metrics.Cancellation()
	u.log.Infof("Appointment cancelled: id=%s, doctor=%s, slot=%s %s", id, appointment.DoctorID, appointment.SlotDate, appointment.SlotTime)
	return nil
}

// MarkCompleted completes an active appointment whose slot has started.
// The slot stays consumed. Completing twice is a no-op.
func (u *appointmentUsecase) MarkCompleted(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.find(ctx, u.tx.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	if !canComplete(principal, appointment) {
		return nil, ErrForbidden
	}
	if appointment.Cancelled {
		return nil, ErrNotEligible
	}
	if appointment.IsCompleted {
		return converter.AppointmentToResponse(appointment), nil
	}
	if appointment.SlotTime.On(appointment.SlotDate, u.loc).After(u.now()) {
		return nil, ErrNotEligible
	}

	completedAt := u.now()
	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.MarkCompleted(ctx, tx, id, completedAt)
		if err != nil {
			u.log.Warnf("Failed to complete appointment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			current, err := u.find(ctx, tx, id)
			if err != nil {
				return err
			}
			if current.Cancelled {
				return ErrNotEligible
			}
			*appointment = *current
			return nil
		}

		old := converter.AppointmentToResponse(appointment)
		appointment.IsCompleted = true
		appointment.CompletedAt = &completedAt
		if err := u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionAppointmentComplete, "appointment", id.String(), old, converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.events.Record(ctx, tx, entity.EventAppointmentCompleted, appointment)
	})
	if err != nil {
		return nil, err
	}

	u.metrics.Completion()
	u.log.Infof("Appointment completed: id=%s, doctor=%s", id, appointment.DoctorID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// ownedByHospital reports whether the appointment's doctor belongs to the principal's hospital.
func ownedByHospital(p entity.Principal, a *entity.Appointment) bool {
	return p.IsHospital() && a.HospitalID != nil && *a.HospitalID == p.UserID
}

func canComplete(p entity.Principal, a *entity.Appointment) bool {
	return p.IsAdmin() || (p.IsDoctor() && a.DoctorID == p.UserID) || ownedByHospital(p, a)
}

func canCancel(p entity.Principal, a *entity.Appointment) bool {
	return (p.IsPatient() && a.PatientID == p.UserID) || canComplete(p, a)
}

func canView(p entity.Principal, a *entity.Appointment) bool {
	return canCancel(p, a)
}
