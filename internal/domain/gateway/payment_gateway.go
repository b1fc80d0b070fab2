package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	AppointmentID uuid.UUID
	Amount        decimal.Decimal
	Description   string
	CustomerEmail string
}

type CheckoutSession struct {
	ID            string
	URL           string
	AppointmentID uuid.UUID
	Paid          bool
}

// PaymentGateway is the payment processor. It only answers whether money was captured.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyCheckout(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
