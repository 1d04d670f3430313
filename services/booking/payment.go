package booking

import (
	"context"
	"fmt"
	"math"

	"medibook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"
)

// PaymentGateway abstracts the external payment provider: create a hosted
// checkout session for an appointment and query its final outcome
// server-to-server.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)

	// SessionOutcome returns the provider-reported outcome for a session
	// reference. final is false while the session is still open.
	SessionOutcome(ctx context.Context, reference string) (outcome models.PaymentOutcome, final bool, err error)
}

// StripeGateway implements PaymentGateway with Stripe Checkout.
type StripeGateway struct {
	Logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Logger: logger}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(int64(math.Round(req.Amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.AppointmentID),
	}
	params.Context = ctx
	params.AddMetadata("appointment_id", req.AppointmentID)

	s, err := session.New(params)
	if err != nil {
		g.Logger.Error("stripe checkout session creation failed", zap.Error(err))
		return nil, NewUpstreamPaymentError("payment provider unavailable, please retry")
	}

	g.Logger.Info("checkout session created",
		zap.String("appointment", req.AppointmentID),
		zap.String("session", s.ID))
	return &models.CheckoutSession{Reference: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) SessionOutcome(ctx context.Context, reference string) (models.PaymentOutcome, bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(reference, params)
	if err != nil {
		return "", false, NewUpstreamPaymentError(fmt.Sprintf("failed to query session %s", reference))
	}

	switch {
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return models.PaymentSucceeded, true, nil
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return models.PaymentFailed, true, nil
	default:
		return "", false, nil
	}
}
