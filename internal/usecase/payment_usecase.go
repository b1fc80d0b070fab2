package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentUsecase interface {
	CreateCheckout(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID) (*dto.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.ConfirmPaymentRequest) (*dto.AppointmentResponse, error)
}

type paymentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	payments        gateway.PaymentGateway
	auditService    service.AuditService
	events          service.EventRecorder
	metrics         *metrics.Collector
	now             func() time.Time
}

func NewPaymentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	payments gateway.PaymentGateway,
	auditService service.AuditService,
	events service.EventRecorder,
	collector *metrics.Collector,
) PaymentUsecase {
	return &paymentUsecase{
		tx:              tx,
		log:             log,
		appointmentRepo: appointmentRepo,
		payments:        payments,
		auditService:    auditService,
		events:          events,
		metrics:         collector,
		now:             time.Now,
	}
}

func (u *paymentUsecase) CreateCheckout(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID) (*dto.CheckoutResponse, error) {
	appointment, err := u.findOwned(ctx, principal, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Cancelled || appointment.Payment {
		return nil, ErrNotEligible
	}

	session, err := u.payments.CreateCheckout(ctx, gateway.CheckoutRequest{
		AppointmentID: appointment.ID,
		Amount:        appointment.Amount,
		Description:   fmt.Sprintf("Consultation with %s on %s at %s", appointment.DoctorSnapshot.Name, appointment.SlotDate, appointment.SlotTime),
		CustomerEmail: appointment.PatientSnapshot.Email,
	})
	if err != nil {
		u.log.Errorf("Failed to create checkout for appointment %s: %+v", appointmentID, err)
		return nil, upstream("create checkout", err)
	}

	return &dto.CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// ConfirmPayment flips payment=true once the processor reports the session paid.
// Confirming a paid appointment again succeeds without asking the processor.
func (u *paymentUsecase) ConfirmPayment(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID, req *dto.ConfirmPaymentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findOwned(ctx, principal, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Payment {
		return converter.AppointmentToResponse(appointment), nil
	}
	if appointment.Cancelled {
		return nil, ErrNotEligible
	}

	session, err := u.payments.VerifyCheckout(ctx, req.SessionID)
	if err != nil {
		u.log.Errorf("Failed to verify checkout %s: %+v", req.SessionID, err)
		return nil, upstream("verify checkout", err)
	}
	if !session.Paid || session.AppointmentID != appointment.ID {
		return nil, ErrNotEligible
	}

	paidAt := u.now()
	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.appointmentRepo.MarkPaid(ctx, tx, appointmentID, paidAt)
		if err != nil {
			u.log.Warnf("Failed to mark appointment %s paid: %+v", appointmentID, err)
			return err
		}
		if affected == 0 {
			current, err := u.appointmentRepo.FindByID(ctx, tx, appointmentID)
			if err != nil {
				return err
			}
			if current == nil || !current.Payment {
				return ErrNotEligible
			}
			*appointment = *current
			return nil
		}

		old := converter.AppointmentToResponse(appointment)
		appointment.Payment = true
		appointment.PaidAt = &paidAt
		if err := u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionAppointmentPay, "appointment", appointmentID.String(), old, converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.events.Record(ctx, tx, entity.EventAppointmentPaid, appointment)
	})
	if err != nil {
		return nil, err
	}

	u.metrics.Payment()
	u.log.Infof("Payment captured: appointment=%s, session=%s", appointmentID, session.ID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *paymentUsecase) findOwned(ctx context.Context, principal entity.Principal, appointmentID uuid.UUID) (*entity.Appointment, error) {
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
	return appointment, nil
}
