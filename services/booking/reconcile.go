package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	"medibook/models"

	"go.uber.org/zap"
)

// expiryBatchSize bounds one sweep pass.
const expiryBatchSize = 200

// DefaultReconciliationService applies provider payment outcomes and runs
// the reservation expiry sweep. It is the only component besides the
// orchestrator allowed to release slots.
type DefaultReconciliationService struct {
	Appointments appointmentRepo.AppointmentRepository
	Ledger       SlotLedger
	Gateway      PaymentGateway
	Logger       *zap.Logger
}

func (r *DefaultReconciliationService) ConfirmPayment(ctx context.Context, appointmentID string, outcome models.PaymentOutcome, source models.OutcomeSource) error {
	if !source.Trusted() {
		return NewAuthorizationError("payment outcome must come from a provider-verified source")
	}

	appt, err := r.Appointments.GetByID(ctx, appointmentID)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return NewNotFoundError("appointment not found")
	}
	if err != nil {
		return fmt.Errorf("appointment lookup failed: %w", err)
	}

	switch outcome {
	case models.PaymentSucceeded:
		applied, err := r.Appointments.Transition(ctx, appt.ID,
			allowedFrom(models.StatusPaid), models.StatusPaid)
		if err != nil {
			return err
		}
		if !applied {
			// Re-confirming an already paid appointment is a no-op.
			current, err := r.Appointments.GetByID(ctx, appointmentID)
			if err != nil {
				return fmt.Errorf("appointment lookup failed: %w", err)
			}
			if current.Status == models.StatusPaid || current.Status == models.StatusCompleted {
				return nil
			}
			return NewInvalidTransitionError(fmt.Sprintf("cannot mark a %s appointment paid", current.Status))
		}
		r.Logger.Info("payment confirmed", zap.String("appointment", appt.ID))
		return nil

	case models.PaymentFailed:
		applied, err := r.Appointments.Transition(ctx, appt.ID,
			allowedFrom(models.StatusPaymentFailed), models.StatusPaymentFailed)
		if err != nil {
			return err
		}
		if !applied {
			current, err := r.Appointments.GetByID(ctx, appointmentID)
			if err != nil {
				return fmt.Errorf("appointment lookup failed: %w", err)
			}
			if current.Status == models.StatusPaymentFailed {
				return nil
			}
			return NewInvalidTransitionError(fmt.Sprintf("cannot fail payment on a %s appointment", current.Status))
		}
		// The hold is void; hand the slot back.
		r.Ledger.Release(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime)
		r.Logger.Info("payment failed, slot released", zap.String("appointment", appt.ID))
		return nil
	}

	return NewValidationError(fmt.Sprintf("unknown payment outcome %q", outcome))
}

func (r *DefaultReconciliationService) VerifyAndConfirm(ctx context.Context, appointmentID string) (models.AppointmentStatus, error) {
	appt, err := r.Appointments.GetByID(ctx, appointmentID)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return "", NewNotFoundError("appointment not found")
	}
	if err != nil {
		return "", fmt.Errorf("appointment lookup failed: %w", err)
	}
	if appt.PaymentRef == "" {
		return "", NewValidationError("no payment has been requested for this appointment")
	}

	outcome, final, err := r.Gateway.SessionOutcome(ctx, appt.PaymentRef)
	if err != nil {
		return "", err
	}
	if !final {
		// Still open at the provider; nothing to apply yet.
		return appt.Status, nil
	}

	if err := r.ConfirmPayment(ctx, appointmentID, outcome, models.SourceServerCheck); err != nil {
		return "", err
	}
	current, err := r.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return "", fmt.Errorf("appointment lookup failed: %w", err)
	}
	return current.Status, nil
}

// ExpireStale drives holds past their reservation deadline to Cancelled.
// Each expiry is a compare-and-set, so a payment confirming at the same
// moment wins or loses cleanly; a lost race is skipped, not an error.
func (r *DefaultReconciliationService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	stale, err := r.Appointments.FindExpired(ctx, now, expiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, appt := range stale {
		applied, err := r.Appointments.Transition(ctx, appt.ID,
			[]models.AppointmentStatus{models.StatusReserved, models.StatusPaymentPending},
			models.StatusCancelled)
		if err != nil {
			r.Logger.Error("expiry transition failed",
				zap.String("appointment", appt.ID), zap.Error(err))
			continue
		}
		if !applied {
			continue
		}
		r.Ledger.Release(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime)
		expired++
		r.Logger.Info("reservation expired",
			zap.String("appointment", appt.ID),
			zap.String("slot", appt.SlotDate+" "+appt.SlotTime))
	}
	return expired, nil
}
