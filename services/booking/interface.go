package booking

import (
	"context"
	"time"

	"medibook/models"
)

// BookingService orchestrates the appointment lifecycle: slot reservation,
// payment initiation, cancellation and completion.
type BookingService interface {
	// BookAppointment reserves the slot and creates the appointment in
	// Reserved state. The reserve and the insert are effectively atomic: if
	// the insert fails the reservation is released before the error returns.
	BookAppointment(ctx context.Context, patientID string, req models.BookingRequest) (*models.Appointment, error)

	// RequestPayment creates a checkout session for the appointment and
	// moves it to PaymentPending. Repeat calls while PaymentPending return a
	// fresh session without creating a duplicate appointment.
	RequestPayment(ctx context.Context, appointmentID, requesterID string) (*models.CheckoutSession, error)

	// CancelAppointment cancels on behalf of the given actor and releases
	// the slot. Patients may cancel their own appointment before or after
	// payment; doctors only after payment; admins always.
	CancelAppointment(ctx context.Context, appointmentID, actorID, actorRole string) error

	// CompleteAppointment marks a paid appointment completed. Only the
	// treating doctor may call it; the slot stays recorded as used.
	CompleteAppointment(ctx context.Context, appointmentID, doctorID string) error

	ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	Availability(ctx context.Context, doctorID, date string) ([]string, error)
}

// ReconciliationService applies external payment outcomes to appointment
// state and expires abandoned reservations.
type ReconciliationService interface {
	// ConfirmPayment applies a terminal provider outcome. Idempotent for
	// repeats of the same outcome; rejects untrusted sources outright.
	ConfirmPayment(ctx context.Context, appointmentID string, outcome models.PaymentOutcome, source models.OutcomeSource) error

	// VerifyAndConfirm performs a server-to-server status check for the
	// appointment's stored session reference and applies the result. It
	// returns the appointment status after reconciliation.
	VerifyAndConfirm(ctx context.Context, appointmentID string) (models.AppointmentStatus, error)

	// ExpireStale cancels reservations whose deadline passed before now and
	// releases their slots. Returns the number of holds expired.
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}
