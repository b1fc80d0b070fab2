package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/delivery/dto"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutAndConfirm(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(650)
	patient := c.addPatient("Asha")

	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	checkout, err := c.payments.CreateCheckout(ctx, patient, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", checkout.SessionID)
	require.Len(t, c.pay.created, 1)
	assert.Equal(t, "650", c.pay.created[0].Amount.String())
	assert.Equal(t, booked.ID, c.pay.created[0].AppointmentID)

	c.pay.session = &gateway.CheckoutSession{ID: "cs_test_1", AppointmentID: booked.ID, Paid: true}
	resp, err := c.payments.ConfirmPayment(ctx, patient, booked.ID, &dto.ConfirmPaymentRequest{SessionID: "cs_test_1"})
	require.NoError(t, err)
	assert.True(t, resp.Payment)
	assert.Equal(t, string(entity.AppointmentStatusPaid), resp.Status)

	// Confirming again does not ask the processor.
	c.pay.verifyErr = errors.New("should not be called")
	again, err := c.payments.ConfirmPayment(ctx, patient, booked.ID, &dto.ConfirmPaymentRequest{SessionID: "cs_test_1"})
	require.NoError(t, err)
	assert.True(t, again.Payment)

	_, err = c.payments.CreateCheckout(ctx, patient, booked.ID)
	assert.ErrorIs(t, err, ErrNotEligible)

	assert.Equal(t, []string{entity.EventAppointmentBooked, entity.EventAppointmentPaid}, c.s.eventTypes())
}

func TestConfirmPaymentRejections(t *testing.T) {
	tests := []struct {
		name      string
		session   func(appointmentID uuid.UUID) *gateway.CheckoutSession
		verifyErr error
		wantErr   error
	}{
		{
			name:      "processor down",
			verifyErr: errors.New("connection reset"),
			wantErr:   ErrUpstreamFailure,
		},
		{
			name: "unpaid session",
			session: func(id uuid.UUID) *gateway.CheckoutSession {
				return &gateway.CheckoutSession{ID: "cs", AppointmentID: id}
			},
			wantErr: ErrNotEligible,
		},
		{
			name: "session for another appointment",
			session: func(uuid.UUID) *gateway.CheckoutSession {
				return &gateway.CheckoutSession{ID: "cs", AppointmentID: uuid.New(), Paid: true}
			},
			wantErr: ErrNotEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClinic(t)
			doctor := c.addDoctor(650)
			patient := c.addPatient("Asha")
			booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

			c.pay.verifyErr = tt.verifyErr
			if tt.session != nil {
				c.pay.session = tt.session(booked.ID)
			}

			_, err := c.payments.ConfirmPayment(context.Background(), patient, booked.ID, &dto.ConfirmPaymentRequest{SessionID: "cs"})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, c.appointment(booked.ID).Payment)
		})
	}
}

func TestCheckoutRejections(t *testing.T) {
	c := newClinic(t)
	ctx := context.Background()
	doctor := c.addDoctor(650)
	patient := c.addPatient("Asha")
	stranger := c.addPatient("Bilal")
	booked := c.mustBook(patient, doctor.UserID, "5_8_2025", "11:00 AM")

	_, err := c.payments.CreateCheckout(ctx, stranger, booked.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	c.pay.createErr = errors.New("stripe: rate limited")
	_, err = c.payments.CreateCheckout(ctx, patient, booked.ID)
	assert.ErrorIs(t, err, ErrUpstreamFailure)

	c.pay.createErr = nil
	require.NoError(t, c.appointments.Cancel(ctx, patient, booked.ID))
	_, err = c.payments.CreateCheckout(ctx, patient, booked.ID)
	assert.ErrorIs(t, err, ErrNotEligible)
}
