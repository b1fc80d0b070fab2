package usecase

import (
	"context"
	"fmt"
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

type SlotCalendarUsecase interface {
	GetSlotsForDate(ctx context.Context, doctorID uuid.UUID, date string) (*dto.DaySlotsResponse, error)
	IsSlotFree(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (bool, error)
	GetCustomSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.CustomSlotsResponse, error)
	SetCustomSlots(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.SetCustomSlotsRequest) (*dto.CustomSlotsResponse, error)
	ClearCustomSlots(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, date string) error
}

// calendar answers which times a doctor offers on a date and which are free.
// It is shared by the calendar and booking use cases.
type calendar struct {
	bookedSlotRepo repository.BookedSlotRepository
	customSlotRepo repository.CustomSlotRepository
	loc            *time.Location
	now            func() time.Time
}

func (c *calendar) clock() time.Time {
	return c.now().In(c.loc)
}

// offerable returns the custom list for the date verbatim, or the generated default.
func (c *calendar) offerable(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, now time.Time) ([]slot.TimeSlot, bool, error) {
	custom, err := c.customSlotRepo.Find(ctx, db, doctorID, date)
	if err != nil {
		return nil, false, err
	}
	if custom != nil {
		return custom.Times, true, nil
	}
	return slot.DefaultSlots(date, now), false, nil
}

// isFree reads the booked-slot table, never the cache.
func (c *calendar) isFree(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot, now time.Time) (bool, error) {
	if slot.Elapsed(date, t, now) {
		return false, nil
	}
	reserved, err := c.bookedSlotRepo.IsReserved(ctx, db, doctorID, date, t)
	if err != nil {
		return false, err
	}
	return !reserved, nil
}

type slotCalendarUsecase struct {
	calendar
	tx                repository.Transactor
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	slotCache         service.SlotCache
	auditService      service.AuditService
}

func NewSlotCalendarUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	bookedSlotRepo repository.BookedSlotRepository,
	customSlotRepo repository.CustomSlotRepository,
	slotCache service.SlotCache,
	auditService service.AuditService,
	loc *time.Location,
) SlotCalendarUsecase {
	return &slotCalendarUsecase{
		calendar: calendar{
			bookedSlotRepo: bookedSlotRepo,
			customSlotRepo: customSlotRepo,
			loc:            loc,
			now:            time.Now,
		},
		tx:                tx,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		slotCache:         slotCache,
		auditService:      auditService,
	}
}

// GetSlotsForDate lists the offerable times of the date with their availability.
// Availability comes from the slot cache when the day is cached.
func (u *slotCalendarUsecase) GetSlotsForDate(ctx context.Context, doctorID uuid.UUID, date string) (*dto.DaySlotsResponse, error) {
	key, err := slot.ParseDateKey(date)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	now := u.clock()
	times, custom, err := u.offerable(ctx, db, doctorID, key, now)
	if err != nil {
		u.log.Warnf("Failed to load offerable slots for doctor %s on %s: %+v", doctorID, key, err)
		return nil, err
	}

	booked, err := u.bookedTimes(ctx, db, doctorID, key)
	if err != nil {
		return nil, err
	}

	taken := make(map[slot.TimeSlot]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	slots := make([]dto.SlotResponse, 0, len(times))
	for _, t := range times {
		_, isTaken := taken[t]
		slots = append(slots, dto.SlotResponse{
			Time:      t.String(),
			Available: doctor.IsBookable() && !isTaken && !slot.Elapsed(key, t, now),
		})
	}

	return &dto.DaySlotsResponse{
		DoctorID: doctorID,
		SlotDate: key.String(),
		Custom:   custom,
		Slots:    slots,
	}, nil
}

func (u *slotCalendarUsecase) bookedTimes(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, error) {
	// The version must be read before the table so a write committed in between
	// makes the fill below a no-op.
	var (
		version  int64
		canStore bool
	)
	if u.slotCache != nil {
		times, v, hit, err := u.slotCache.BookedTimes(ctx, doctorID, date)
		if err != nil {
			u.log.Warnf("Slot cache read failed, falling back to database: %+v", err)
		} else if hit {
			return times, nil
		} else {
			version, canStore = v, true
		}
	}

	times, err := u.bookedSlotRepo.FindTimes(ctx, db, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to find booked slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	if canStore {
		stored, err := u.slotCache.Store(ctx, doctorID, date, version, times)
		if err != nil {
			u.log.Warnf("Failed to warm slot cache: %+v", err)
		} else if !stored {
			u.log.Debugf("Skipped warming slot cache for doctor %s on %s, day changed while reading", doctorID, date)
		}
	}
	return times, nil
}

func (u *slotCalendarUsecase) IsSlotFree(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) (bool, error) {
	return u.isFree(ctx, u.tx.DB(ctx), doctorID, date, t, u.clock())
}

func (u *slotCalendarUsecase) GetCustomSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.CustomSlotsResponse, error) {
	key, err := slot.ParseDateKey(date)
	if err != nil {
		return nil, err
	}

	custom, err := u.customSlotRepo.Find(ctx, u.tx.DB(ctx), doctorID, key)
	if err != nil {
		u.log.Warnf("Failed to find custom slots: %+v", err)
		return nil, err
	}
	if custom == nil {
		return nil, ErrCustomSlotsNotFound
	}

	return &dto.CustomSlotsResponse{
		DoctorID: doctorID,
		SlotDate: key.String(),
		Times:    converter.TimeSlotsToStrings(custom.Times),
	}, nil
}

// SetCustomSlots replaces the offerable times of one date. Existing bookings
// are left alone even when their time drops out of the new list.
func (u *slotCalendarUsecase) SetCustomSlots(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, req *dto.SetCustomSlotsRequest) (*dto.CustomSlotsResponse, error) {
	key, err := slot.ParseDateKey(req.SlotDate)
	if err != nil {
		return nil, err
	}

	times, err := canonicalTimes(req.Times)
	if err != nil {
		return nil, err
	}

	custom := &entity.CustomSlot{
		DoctorID: doctorID,
		SlotDate: key,
		Times:    times,
	}

	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := u.authorize(ctx, tx, principal, doctorID); err != nil {
			return err
		}

		old, err := u.customSlotRepo.Find(ctx, tx, doctorID, key)
		if err != nil {
			return err
		}

		if err := u.customSlotRepo.Upsert(ctx, tx, custom); err != nil {
			u.log.Warnf("Failed to save custom slots: %+v", err)
			return err
		}

		var oldTimes []string
		if old != nil {
			oldTimes = converter.TimeSlotsToStrings(old.Times)
		}
		return u.auditService.LogUpdate(ctx, tx, principal.Ref(), entity.AuditActionCustomSlotsSet, "custom_slot",
			fmt.Sprintf("%s/%s", doctorID, key), oldTimes, converter.TimeSlotsToStrings(times))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Custom slots set: doctor=%s, date=%s, count=%d", doctorID, key, len(times))
	return &dto.CustomSlotsResponse{
		DoctorID: doctorID,
		SlotDate: key.String(),
		Times:    converter.TimeSlotsToStrings(times),
	}, nil
}

// ClearCustomSlots drops the override so the date falls back to the default schedule.
func (u *slotCalendarUsecase) ClearCustomSlots(ctx context.Context, principal entity.Principal, doctorID uuid.UUID, date string) error {
	key, err := slot.ParseDateKey(date)
	if err != nil {
		return err
	}

	err = u.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := u.authorize(ctx, tx, principal, doctorID); err != nil {
			return err
		}

		old, err := u.customSlotRepo.Find(ctx, tx, doctorID, key)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrCustomSlotsNotFound
		}

		if _, err := u.customSlotRepo.Delete(ctx, tx, doctorID, key); err != nil {
			u.log.Warnf("Failed to delete custom slots: %+v", err)
			return err
		}

		return u.auditService.LogDelete(ctx, tx, principal.Ref(), entity.AuditActionCustomSlotsClear, "custom_slot",
			fmt.Sprintf("%s/%s", doctorID, key), converter.TimeSlotsToStrings(old.Times))
	})
	if err != nil {
		return err
	}

	u.log.Infof("Custom slots cleared: doctor=%s, date=%s", doctorID, key)
	return nil
}

func (u *slotCalendarUsecase) authorize(ctx context.Context, db *gorm.DB, principal entity.Principal, doctorID uuid.UUID) error {
	doctor, err := u.doctorProfileRepo.FindByUserID(ctx, db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	if !doctor.ManagedBy(principal) {
		return ErrForbidden
	}
	return nil
}

// canonicalTimes parses and de-duplicates times, keeping their order.
func canonicalTimes(raw []string) ([]slot.TimeSlot, error) {
	seen := make(map[slot.TimeSlot]struct{}, len(raw))
	times := make([]slot.TimeSlot, 0, len(raw))
	for _, r := range raw {
		t, err := slot.ParseTimeSlot(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	return times, nil
}
