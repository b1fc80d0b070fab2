package usecase

import (
	"context"
	"testing"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfileLeavesSnapshots(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	log := quietLogger()
	patients := NewPatientUsecase(fakeTransactor{c.s}, log, fakeUserRepo{c.s}, fakePatientRepo{c.s}, service.NewAuditService(log, fakeAuditLogRepo{c.s}))
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	name := "Asha Menon"
	phone := "9111111111"
	resp, err := patients.UpdateMyProfile(ctx, patient.UserID, &dto.UpdatePatientProfileRequest{FullName: &name, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, resp.FullName)
	assert.Equal(t, phone, resp.PhoneNumber)

	got, err := patients.GetMyProfile(ctx, patient.UserID)
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)

	snapshot := c.appointment(booked.ID).PatientSnapshot
	assert.Equal(t, "Asha", snapshot.Name)
	assert.Equal(t, "9000000000", snapshot.PhoneNumber)
}

func TestGetMyProfileWithoutProfileRow(t *testing.T) {
	c := newClinic(t)
	log := quietLogger()
	patients := NewPatientUsecase(fakeTransactor{c.s}, log, fakeUserRepo{c.s}, fakePatientRepo{c.s}, service.NewAuditService(log, fakeAuditLogRepo{c.s}))

	id := uuid.New()
	c.s.users[id] = entity.User{ID: id, RoleID: entity.RoleIDPatient, Email: "new@patient.test", FullName: "New Patient"}

	got, err := patients.GetMyProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "New Patient", got.FullName)
	assert.Empty(t, got.PhoneNumber)

	_, err = patients.GetMyProfile(context.Background(), c.hospital.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuditLogPaging(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	logs := NewAuditLogUsecase(fakeTransactor{c.s}, quietLogger(), fakeAuditLogRepo{c.s})
	doctor := c.addDoctor(500)
	patient := c.addPatient("Asha")

	for _, tm := range []string{"10:00 AM", "10:30 AM", "11:00 AM"} {
		c.mustBook(patient, doctor.UserID, "5_8_2025", tm)
	}

	page, err := logs.ListAuditLogs(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Logs, 2)

	first, err := logs.GetAuditLog(ctx, page.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionAppointmentBook, first.Action)

	_, err = logs.GetAuditLog(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
