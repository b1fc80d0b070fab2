package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerEntry(amount int64, created int, mutate func(a *entity.Appointment)) entity.Appointment {
	a := entity.Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: time.Unix(int64(created), 0),
	}
	if mutate != nil {
		mutate(&a)
	}
	return a
}

func TestSummarizeEarnings(t *testing.T) {
	ledger := []entity.Appointment{
		ledgerEntry(100, 1, func(a *entity.Appointment) { a.IsCompleted = true }),
		ledgerEntry(200, 2, func(a *entity.Appointment) { a.Payment = true }),
		ledgerEntry(50, 3, func(a *entity.Appointment) { a.Cancelled = true }),
	}

	admin := Summarize(ledger, decimal.RequireFromString("0.16"), 5)
	assert.Equal(t, "48.00", admin.Earnings.StringFixed(2))
	assert.Equal(t, 3, admin.Count)

	doctor := Summarize(ledger, decimal.NewFromInt(1), 5)
	assert.Equal(t, "300.00", doctor.Earnings.StringFixed(2))
}

func TestSummarizeLatestAndPatients(t *testing.T) {
	shared := uuid.New()
	var ledger []entity.Appointment
	for i := 1; i <= 8; i++ {
		ledger = append(ledger, ledgerEntry(10, i, func(a *entity.Appointment) {
			if i%2 == 0 {
				a.PatientID = shared
			}
		}))
	}

	s := Summarize(ledger, decimal.NewFromInt(1), 5)
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 5, s.DistinctPatients)
	assert.True(t, s.Earnings.IsZero())
	require.Len(t, s.Latest, 5)
	for i, a := range s.Latest {
		assert.Equal(t, time.Unix(int64(8-i), 0), a.CreatedAt)
	}

	empty := Summarize(nil, decimal.NewFromInt(1), 5)
	assert.Zero(t, empty.Count)
	assert.Empty(t, empty.Latest)
	assert.Equal(t, "0.00", empty.Earnings.StringFixed(2))
}

func TestGetDashboardByRole(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctorA := c.addDoctor(100)
	doctorB := c.addDoctor(200)
	asha := c.addPatient("Asha")
	bilal := c.addPatient("Bilal")

	paid := c.mustBook(asha, doctorA.UserID, "5_8_2025", "10:00 AM")
	c.mustBook(bilal, doctorB.UserID, "5_8_2025", "10:00 AM")
	a := c.appointment(paid.ID)
	a.Payment = true
	c.s.appointments[paid.ID] = a

	dashboards := NewDashboardUsecase(fakeTransactor{c.s}, quietLogger(), fakeAppointmentRepo{c.s}, fakeDoctorRepo{c.s}, decimal.RequireFromString("0.16"))

	admin, err := dashboards.GetDashboard(ctx, c.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, admin.Appointments)
	assert.Equal(t, 2, admin.Patients)
	assert.Equal(t, "16.00", admin.Earnings)
	require.NotNil(t, admin.Doctors)
	assert.EqualValues(t, 2, *admin.Doctors)

	hospital, err := dashboards.GetDashboard(ctx, c.hospital)
	require.NoError(t, err)
	assert.Equal(t, "100.00", hospital.Earnings)
	assert.EqualValues(t, 2, *hospital.Doctors)

	doctor, err := dashboards.GetDashboard(ctx, doctorA)
	require.NoError(t, err)
	assert.Equal(t, 1, doctor.Appointments)
	assert.Nil(t, doctor.Doctors)
	assert.Len(t, doctor.LatestAppointments, 1)

	_, err = dashboards.GetDashboard(ctx, asha)
	assert.ErrorIs(t, err, ErrForbidden)
}
