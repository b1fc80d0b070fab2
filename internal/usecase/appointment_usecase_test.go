package usecase

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelTwiceReleasesOnce(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	require.NoError(t, c.appointments.Cancel(ctx, patient, booked.ID))
	afterFirst := c.appointment(booked.ID)

	// Someone else takes the freed slot before the retry arrives.
	other := c.addPatient("Bilal")
	c.mustBook(other, doctor.UserID, "5_8_2025", "11:00 AM")

	require.NoError(t, c.appointments.Cancel(ctx, patient, booked.ID))
	assert.Equal(t, afterFirst, c.appointment(booked.ID))

	free, err := c.calendar.IsSlotFree(ctx, doctor.UserID, "5_8_2025", "11:00 AM")
	require.NoError(t, err)
	assert.False(t, free, "second cancel must not release the new booking")

	assert.Equal(t, []string{
		entity.EventAppointmentBooked,
		entity.EventAppointmentCancelled,
		entity.EventAppointmentBooked,
	}, c.s.eventTypes())
}

func TestSlotFreeMatchesLedger(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(500)
	patients := []entity.Principal{c.addPatient("Asha"), c.addPatient("Bilal"), c.addPatient("Chen")}
	times := []string{"10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM"}

	rng := rand.New(rand.NewSource(7))
	var booked []uuid.UUID
	for i := 0; i < 200; i++ {
		if len(booked) > 0 && rng.Intn(3) == 0 {
			k := rng.Intn(len(booked))
			id := booked[k]
			a := c.appointment(id)
			patient := entity.Principal{UserID: a.PatientID, Role: entity.RolePatient}
			require.NoError(t, c.appointments.Cancel(ctx, patient, id))
			booked = append(booked[:k], booked[k+1:]...)
			continue
		}
		p := patients[rng.Intn(len(patients))]
		resp, err := c.book(p, doctor.UserID, "5_8_2025", times[rng.Intn(len(times))])
		if err != nil {
			require.ErrorIs(t, err, ErrSlotUnavailable)
			continue
		}
		booked = append(booked, resp.ID)
	}

	for _, tm := range times {
		free, err := c.calendar.IsSlotFree(ctx, doctor.UserID, "5_8_2025", slot.TimeSlot(tm))
		require.NoError(t, err)
		active := c.activeCount(doctor.UserID, "5_8_2025", tm)
		assert.LessOrEqual(t, active, 1, tm)
		assert.Equal(t, active == 0, free, tm)
	}
}

func TestCancelAuthorization(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(500)
	otherDoctor := c.addDoctor(500)
	patient := c.addPatient("Asha")
	stranger := c.addPatient("Bilal")
	otherHospital := c.addHospital(entity.HospitalStatusApproved)

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	assert.ErrorIs(t, c.appointments.Cancel(ctx, stranger, booked.ID), ErrForbidden)
	assert.ErrorIs(t, c.appointments.Cancel(ctx, otherDoctor, booked.ID), ErrForbidden)
	assert.ErrorIs(t, c.appointments.Cancel(ctx, otherHospital, booked.ID), ErrForbidden)
	assert.ErrorIs(t, c.appointments.Cancel(ctx, patient, uuid.New()), ErrNotFound)

	for _, who := range []entity.Principal{c.hospital, doctor, c.admin} {
		a := c.appointment(booked.ID)
		a.Cancelled = false
		c.s.appointments[booked.ID] = a
		c.s.booked = map[string]entity.BookedSlot{}

		assert.NoError(t, c.appointments.Cancel(ctx, who, booked.ID), who.Role)
		assert.True(t, c.appointment(booked.ID).Cancelled)
	}
}

func TestMarkCompletedRules(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	_, err := c.appointments.MarkCompleted(ctx, patient, booked.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.appointments.MarkCompleted(ctx, doctor, booked.ID)
	assert.ErrorIs(t, err, ErrNotEligible, "slot has not started")

	c.now = time.Date(2025, time.August, 5, 11, 30, 0, 0, time.UTC)
	resp, err := c.appointments.MarkCompleted(ctx, doctor, booked.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsCompleted)
	assert.Equal(t, string(entity.AppointmentStatusCompleted), resp.Status)

	again, err := c.appointments.MarkCompleted(ctx, c.hospital, booked.ID)
	require.NoError(t, err)
	assert.True(t, again.IsCompleted)

	// The slot stays consumed.
	free, err := c.calendar.IsSlotFree(ctx, doctor.UserID, "5_8_2025", "11:00 AM")
	require.NoError(t, err)
	assert.False(t, free)

	assert.Equal(t, []string{entity.EventAppointmentBooked, entity.EventAppointmentCompleted}, c.s.eventTypes())
}

func TestMarkCompletedOnCancelled(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")
	require.NoError(t, c.appointments.Cancel(ctx, patient, booked.ID))

	c.now = time.Date(2025, time.August, 6, 9, 0, 0, 0, time.UTC)
	_, err := c.appointments.MarkCompleted(ctx, doctor, booked.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	a := c.appointment(booked.ID)
	assert.True(t, a.Cancelled)
	assert.False(t, a.IsCompleted)
}

func TestListAppointmentsByScope(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctorA := c.addDoctor(500)
	doctorB := c.addDoctor(500)
	asha := c.addPatient("Asha")
	bilal := c.addPatient("Bilal")

	first := c.mustBook(asha, doctorA.UserID, "5_8_2025", "10:00 AM")
	second := c.mustBook(asha, doctorB.UserID, "5_8_2025", "10:00 AM")
	c.mustBook(bilal, doctorA.UserID, "5_8_2025", "10:30 AM")

	mine, err := c.appointments.ListMyAppointments(ctx, asha.UserID)
	require.NoError(t, err)
	require.Equal(t, 2, mine.Total)
	assert.Equal(t, second.ID, mine.Appointments[0].ID, "newest first")
	assert.Equal(t, first.ID, mine.Appointments[1].ID)

	forDoctor, err := c.appointments.ListDoctorAppointments(ctx, doctorA.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, forDoctor.Total)

	forHospital, err := c.appointments.ListHospitalAppointments(ctx, c.hospital.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, forHospital.Total)

	_, err = c.appointments.GetAppointment(ctx, bilal, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := c.appointments.GetAppointment(ctx, doctorA, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestCancelRollsBackWhenLateWriteFails(t *testing.T) {
	for _, table := range []string{"audit_logs", "outbox_events"} {
		t.Run(table, func(t *testing.T) {
			c := newClinic(t)
			ctx := context.Background()
			doctor := c.addDoctor(500)
			patient := c.addPatient("Asha")
			booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")
			audits, events := len(c.s.auditLogs), len(c.s.outbox)

			c.s.failOn(table, errors.New("disk full"))
			require.Error(t, c.appointments.Cancel(ctx, patient, booked.ID))

			a := c.appointment(booked.ID)
			assert.False(t, a.Cancelled)
			assert.Nil(t, a.CancelledAt)
			assert.Len(t, c.s.booked, 1)
			assert.Len(t, c.s.auditLogs, audits)
			assert.Len(t, c.s.outbox, events)

			free, err := c.calendar.IsSlotFree(ctx, doctor.UserID, "5_8_2025", "11:00 AM")
			require.NoError(t, err)
			assert.False(t, free)

			c.s.failOn(table, nil)
			require.NoError(t, c.appointments.Cancel(ctx, patient, booked.ID))
			assert.True(t, c.appointment(booked.ID).Cancelled)
			assert.Empty(t, c.s.booked)
		})
	}
}
