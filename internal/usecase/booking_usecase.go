package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/converter"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"
	"github.com/sudheeshpoolakkal/vespera-sub001/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const voiceNoteFolder = "voice-notes"

type BookingUsecase interface {
	Book(ctx context.Context, principal entity.Principal, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
}

type bookingUsecase struct {
	calendar
	tx                 repository.Transactor
	log                *logrus.Logger
	userRepo           repository.UserRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	appointmentRepo    repository.AppointmentRepository
	mediaStorage       gateway.MediaStorage
	slotLocker         *service.SlotLocker
	slotCache          service.SlotCache
	auditService       service.AuditService
	events             service.EventRecorder
	metrics            *metrics.Collector
}

func NewBookingUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	bookedSlotRepo repository.BookedSlotRepository,
	customSlotRepo repository.CustomSlotRepository,
	mediaStorage gateway.MediaStorage,
	slotLocker *service.SlotLocker,
	slotCache service.SlotCache,
	auditService service.AuditService,
	events service.EventRecorder,
	collector *metrics.Collector,
	loc *time.Location,
) BookingUsecase {
	return &bookingUsecase{
		calendar: calendar{
			bookedSlotRepo: bookedSlotRepo,
			customSlotRepo: customSlotRepo,
			loc:            loc,
			now:            time.Now,
		},
		tx:                 tx,
		log:                log,
		userRepo:           userRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		appointmentRepo:    appointmentRepo,
		mediaStorage:       mediaStorage,
		slotLocker:         slotLocker,
		slotCache:          slotCache,
		auditService:       auditService,
		events:             events,
		metrics:            collector,
	}
}

// Book turns a request into a committed appointment or a rejection.
//
// Flow:
// 1. Doctor must exist and be bookable, and the request must carry a description
// 2. The time must be offerable on that date and free (read from the database)
// 3. Upload the voice note, if any. Failure aborts before anything is written
// 4. Under the slot lock, in one transaction: reserve the slot, insert the
//    appointment, write audit and outbox rows
// 5. After commit, update the slot cache
//
// The booked-slot primary key decides races; the lock only keeps them in-process.
func (u *bookingUsecase) Book(ctx context.Context, principal entity.Principal, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.book(ctx, principal, req)
	u.metrics.Booking(bookingOutcome(err))
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *bookingUsecase) book(ctx context.Context, principal entity.Principal, req *dto.BookAppointmentRequest) (*entity.Appointment, error) {
	date, err := slot.ParseDateKey(req.SlotDate)
	if err != nil {
		return nil, err
	}
	t, err := slot.ParseTimeSlot(req.SlotTime)
	if err != nil {
		return nil, err
	}
	doctorID := req.DoctorID

	db := u.tx.DB(ctx)

	// Step 1: doctor and request checks
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsBookable() {
		return nil, ErrDoctorUnavailable
	}

	description := strings.TrimSpace(req.Description)
	if description == "" && req.VoiceNote == nil {
		return nil, ErrMissingDescription
	}

	patient, err := u.userRepo.FindByID(ctx, db, principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", principal.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	profile, err := u.patientProfileRepo.FindByUserID(ctx, db, principal.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", principal.UserID, err)
		return nil, err
	}

	// Step 2: offerable and free
	now := u.clock()
	offered, _, err := u.offerable(ctx, db, doctorID, date, now)
	if err != nil {
		u.log.Warnf("Failed to load offerable slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}
	if !slot.Contains(offered, t) {
		return nil, ErrSlotUnavailable
	}
	free, err := u.isFree(ctx, db, doctorID, date, t, now)
	if err != nil {
		u.log.Warnf("Failed to check slot %s %s for doctor %s: %+v", date, t, doctorID, err)
		return nil, err
	}
	if !free {
		return nil, ErrSlotUnavailable
	}

	// Step 3: voice note
	var voiceNoteURL string
	if req.VoiceNote != nil {
		voiceNoteURL, err = u.mediaStorage.Upload(ctx, req.VoiceNote, voiceNoteFolder)
		if err != nil {
			u.log.Errorf("Failed to upload voice note for doctor %s: %+v", doctorID, err)
			return nil, upstream("upload voice note", err)
		}
	}

	// Step 4: atomic reserve + ledger write
	unlock := u.slotLocker.Lock(doctorID, date, t)
	defer unlock()

	appointment := &entity.Appointment{
		ID:               uuid.New(),
		DoctorID:         doctorID,
		PatientID:        principal.UserID,
		SlotDate:         date,
		SlotTime:         t,
		ConsultationMode: entity.ConsultationMode(req.ConsultationMode),
		Description:      description,
		VoiceNoteURL:     voiceNoteURL,
		PatientSnapshot:  converter.PatientSnapshotOf(patient, profile),
	}

	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		current, err := u.doctorProfileRepo.FindByUserID(ctx, tx, doctorID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrDoctorNotFound
		}
		if !current.IsBookable() {
			return ErrDoctorUnavailable
		}
		if slot.Elapsed(date, t, u.clock()) {
			return ErrSlotUnavailable
		}

		appointment.Amount = current.Fees
		appointment.HospitalID = current.HospitalID
		appointment.DoctorSnapshot = converter.DoctorSnapshotOf(current)

		reserved, err := u.bookedSlotRepo.Reserve(ctx, tx, &entity.BookedSlot{
			DoctorID:      doctorID,
			SlotDate:      date,
			SlotTime:      t,
			Day:           date.Time(u.loc),
			AppointmentID: appointment.ID,
		})
		if err != nil {
			u.log.Warnf("Failed to reserve slot %s %s for doctor %s: %+v", date, t, doctorID, err)
			return err
		}
		if !reserved {
			return ErrSlotUnavailable
		}

		if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
			if errors.Is(err, repository.ErrDuplicateSlot) {
				return ErrSlotUnavailable
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return err
		}

		if err := u.auditService.LogCreate(ctx, tx, principal.Ref(), entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.events.Record(ctx, tx, entity.EventAppointmentBooked, appointment)
	})
	if err != nil {
		if voiceNoteURL != "" {
			u.discardVoiceNote(voiceNoteURL)
		}
		return nil, err
	}

	// Step 5: cache
	if u.slotCache != nil {
		if err := u.slotCache.MarkBooked(ctx, doctorID, date, t); err != nil {
			u.log.Warnf("Failed to mark slot booked in cache (non-fatal): %+v", err)
			if err := u.slotCache.Invalidate(ctx, doctorID, date); err != nil {
				u.log.Errorf("Failed to invalidate slot cache for doctor %s on %s: %+v", doctorID, date, err)
			}
		}
	}

	u.log.Infof("Booking created: id=%s, doctor=%s, slot=%s %s", appointment.ID, doctorID, date, t)
	return appointment, nil
}

func (u *bookingUsecase) discardVoiceNote(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.mediaStorage.Delete(ctx, url); err != nil {
		u.log.Errorf("Failed to delete orphaned voice note %s: %+v", url, err)
	}
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.Is(err, ErrSlotUnavailable):
		return metrics.OutcomeSlotUnavailable
	case errors.Is(err, ErrDoctorUnavailable):
		return metrics.OutcomeDoctorUnavailable
	case errors.Is(err, ErrMissingDescription):
		return metrics.OutcomeMissingDescription
	case errors.Is(err, ErrUpstreamFailure):
		return metrics.OutcomeUpstreamFailure
	}
	return metrics.OutcomeError
}
