package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"medibook/config"
	"medibook/models"
	"medibook/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// maxWebhookBody bounds the webhook payload read.
const maxWebhookBody = 65536

// PaymentWebhookHandler receives Stripe's signed callbacks. Signature
// verification is the trust boundary: only events that verify against the
// endpoint secret ever reach reconciliation.
type PaymentWebhookHandler struct {
	Reconciler booking.ReconciliationService
	Logger     *zap.Logger
}

func NewPaymentWebhookHandler(rec booking.ReconciliationService, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Reconciler: rec, Logger: logger}
}

func (h *PaymentWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondBadRequest(c, "failed to read webhook payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"),
		config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		respondBadRequest(c, "invalid webhook signature")
		return
	}

	var outcome models.PaymentOutcome
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		outcome = models.PaymentSucceeded
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		outcome = models.PaymentFailed
	default:
		// Not a lifecycle event we act on; acknowledge so Stripe stops retrying.
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.Logger.Error("failed to decode checkout session from event", zap.Error(err))
		respondBadRequest(c, "malformed event payload")
		return
	}
	appointmentID := session.Metadata["appointment_id"]
	if appointmentID == "" {
		appointmentID = session.ClientReferenceID
	}
	if appointmentID == "" {
		respondBadRequest(c, "event carries no appointment reference")
		return
	}

	// A completed session can still be unpaid (delayed methods); only a paid
	// session confirms success.
	if outcome == models.PaymentSucceeded && session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if err := h.Reconciler.ConfirmPayment(c.Request.Context(), appointmentID, outcome, models.SourceProviderWebhook); err != nil {
		h.Logger.Error("webhook reconciliation failed",
			zap.String("appointment", appointmentID), zap.Error(err))
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{})
}
