package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoctorUsecase(c *clinic) *doctorUsecase {
	log := quietLogger()
	u := NewDoctorUsecase(fakeTransactor{c.s}, log, fakeDoctorRepo{c.s}, fakeBookedSlotRepo{c.s}, fakeCustomSlotRepo{c.s},
		fakeReviewRepo{c.s}, service.NewAuditService(log, fakeAuditLogRepo{c.s}), time.UTC).(*doctorUsecase)
	u.now = func() time.Time { return c.now }
	return u
}

func TestGetDoctorProfile(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctors := newDoctorUsecase(c)
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	c.setCustomSlots(doctor, "6_8_2025", "10:00 AM", "10:30 AM")
	c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")
	c.mustBook(patient, doctor.UserID, "6_8_2025", "10:30 AM")
	id := c.completedAppointment(patient, doctor, "4:00 PM")
	_, err := c.ratings.SubmitRating(ctx, patient, id, &dto.RateAppointmentRequest{Rating: 5, Review: "Very patient"})
	require.NoError(t, err)

	detail, err := doctors.GetDoctor(ctx, doctor.UserID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"11:00 AM", "4:00 PM"}, detail.SlotsBooked["5_8_2025"])
	assert.Equal(t, []string{"10:30 AM"}, detail.SlotsBooked["6_8_2025"])
	assert.Equal(t, []string{"10:00 AM", "10:30 AM"}, detail.CustomSlots["6_8_2025"])
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Asha", detail.Reviews[0].PatientName)
	assert.InDelta(t, 5.0, detail.Rating, 1e-9)

	_, err = doctors.GetDoctor(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSelfProfileKeepsBookedAmounts(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctors := newDoctorUsecase(c)
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	fees := decimal.NewFromInt(800)
	about := "Twenty years in practice"
	resp, err := doctors.UpdateSelfProfile(ctx, doctor, &dto.UpdateDoctorProfileRequest{Fees: &fees, About: &about})
	require.NoError(t, err)
	assert.Equal(t, "800.00", resp.Fees)
	assert.Equal(t, about, resp.About)

	a := c.appointment(booked.ID)
	assert.Equal(t, "500", a.Amount.String())
	assert.Equal(t, "500.00", a.DoctorSnapshot.Fees)

	negative := decimal.NewFromInt(-5)
	_, err = doctors.UpdateSelfProfile(ctx, doctor, &dto.UpdateDoctorProfileRequest{Fees: &negative})
	assert.ErrorIs(t, err, ErrInvalidFees)
}

func TestChangeAvailability(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctors := newDoctorUsecase(c)
	doctor := c.addDoctor(500)
	otherDoctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	off := false
	_, err := doctors.ChangeAvailability(ctx, otherDoctor, doctor.UserID, &dto.ChangeAvailabilityRequest{Available: &off})
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := doctors.ChangeAvailability(ctx, c.hospital, doctor.UserID, &dto.ChangeAvailabilityRequest{Available: &off})
	require.NoError(t, err)
	assert.False(t, resp.Available)

	_, err = c.book(patient, doctor.UserID, "5_8_2025", "11:00 AM")
	assert.ErrorIs(t, err, ErrDoctorUnavailable)

	on := true
	_, err = doctors.ChangeAvailability(ctx, doctor, doctor.UserID, &dto.ChangeAvailabilityRequest{Available: &on})
	require.NoError(t, err)
	c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	assert.Contains(t, c.s.auditActions(), entity.AuditActionDoctorAvailability)
}
