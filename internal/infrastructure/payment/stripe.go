package payment

import (
	"context"
	"fmt"

	"github.com/sudheeshpoolakkal/vespera-sub001/config"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/breaker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

const appointmentMetadataKey = "appointment_id"

type stripeGateway struct {
	cfg     config.PaymentConfig
	log     *logrus.Logger
	breaker *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

func NewStripeGateway(cfg config.PaymentConfig, log *logrus.Logger) gateway.PaymentGateway {
	stripe.Key = cfg.StripeSecretKey
	return &stripeGateway{
		cfg:     cfg,
		log:     log,
		breaker: breaker.New[*stripe.CheckoutSession]("stripe", log),
	}
}

func (g *stripeGateway) CreateCheckout(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(req.AppointmentID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(minorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata(appointmentMetadataKey, req.AppointmentID.String())
	params.IdempotencyKey = stripe.String("checkout-" + req.AppointmentID.String())
	params.Context = ctx

	s, err := g.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return session.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return toCheckoutSession(s), nil
}

func (g *stripeGateway) VerifyCheckout(ctx context.Context, sessionID string) (*gateway.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return session.Get(sessionID, params)
	})
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}

	return toCheckoutSession(s), nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *gateway.CheckoutSession {
	appointmentID, _ := uuid.Parse(s.Metadata[appointmentMetadataKey])
	if appointmentID == uuid.Nil {
		appointmentID, _ = uuid.Parse(s.ClientReferenceID)
	}

	return &gateway.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		AppointmentID: appointmentID,
		Paid:          s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
}

// minorUnits converts an amount to the smallest currency unit, e.g. paise.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
