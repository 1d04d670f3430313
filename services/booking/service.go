package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
	"medibook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the booking orchestrator.
type DefaultBookingService struct {
	Doctors        doctorRepo.DoctorRepository
	Appointments   appointmentRepo.AppointmentRepository
	Ledger         SlotLedger
	Gateway        PaymentGateway
	Logger         *zap.Logger
	ReservationTTL time.Duration

	// Checkout redirect targets, passed through to the provider.
	Currency   string
	SuccessURL string
	CancelURL  string
}

func (s *DefaultBookingService) BookAppointment(ctx context.Context, patientID string, req models.BookingRequest) (*models.Appointment, error) {
	if patientID == "" {
		return nil, NewValidationError("missing patient id")
	}
	if !utils.IsValidSlotDate(req.SlotDate) {
		return nil, NewValidationError("slotDate must be formatted YYYY-MM-DD")
	}
	if !utils.IsValidSlotTime(req.SlotTime) {
		return nil, NewValidationError(fmt.Sprintf("%q is not a bookable time", req.SlotTime))
	}

	doctor, err := s.Doctors.GetByID(ctx, req.DoctorID)
	if errors.Is(err, doctorRepo.ErrNotFound) {
		return nil, NewNotFoundError("doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("doctor lookup failed: %w", err)
	}
	if !doctor.Available {
		return nil, NewValidationError("doctor is not currently accepting appointments")
	}

	if err := s.Ledger.TryReserve(ctx, doctor.ID, req.SlotDate, req.SlotTime); err != nil {
		return nil, err
	}

	now := time.Now()
	appt := &models.Appointment{
		ID:                uuid.New().String(),
		DoctorID:          doctor.ID,
		PatientID:         patientID,
		SlotDate:          req.SlotDate,
		SlotTime:          req.SlotTime,
		Amount:            doctor.Fee, // fee snapshot; immutable from here on
		Status:            models.StatusReserved,
		ReservedAt:        now,
		ReservationExpiry: now.Add(s.ReservationTTL),
		CreatedAt:         now,
		UpdatedAt:         now,
		DoctorName:        doctor.Name,
		Speciality:        doctor.Speciality,
	}

	if err := s.Appointments.Insert(ctx, appt); err != nil {
		// Compensate: the slot is held but no appointment records it.
		s.Ledger.Release(ctx, doctor.ID, req.SlotDate, req.SlotTime)
		return nil, fmt.Errorf("failed to record appointment: %w", err)
	}

	s.Logger.Info("appointment booked",
		zap.String("appointment", appt.ID),
		zap.String("doctor", doctor.ID),
		zap.String("patient", patientID),
		zap.String("slot", req.SlotDate+" "+req.SlotTime))
	return appt, nil
}

func (s *DefaultBookingService) RequestPayment(ctx context.Context, appointmentID, requesterID string) (*models.CheckoutSession, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != requesterID {
		return nil, NewAuthorizationError("only the booking patient may request payment")
	}
	if appt.Status != models.StatusReserved && appt.Status != models.StatusPaymentPending {
		return nil, NewInvalidTransitionError(fmt.Sprintf("cannot request payment for a %s appointment", appt.Status))
	}

	checkout := models.CheckoutRequest{
		AppointmentID: appt.ID,
		Amount:        appt.Amount,
		Currency:      s.Currency,
		Description:   fmt.Sprintf("Appointment with Dr. %s on %s at %s", appt.DoctorName, appt.SlotDate, appt.SlotTime),
		SuccessURL:    s.SuccessURL,
		CancelURL:     s.CancelURL,
	}
	sess, err := s.Gateway.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		return nil, err
	}

	if appt.Status == models.StatusReserved {
		applied, err := s.Appointments.Transition(ctx, appt.ID,
			allowedFrom(models.StatusPaymentPending), models.StatusPaymentPending)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Lost a race; acceptable only if someone else already moved it
			// to PaymentPending.
			current, err := s.getAppointment(ctx, appointmentID)
			if err != nil {
				return nil, err
			}
			if current.Status != models.StatusPaymentPending {
				return nil, NewInvalidTransitionError(fmt.Sprintf("appointment is now %s", current.Status))
			}
		}
	}

	// A fresh session supersedes any previous one; the old session simply
	// expires at the provider.
	if err := s.Appointments.SetPaymentRef(ctx, appt.ID, sess.Reference); err != nil {
		return nil, err
	}

	return sess, nil
}

// cancellableFrom maps an actor role onto the states it may cancel from.
func cancellableFrom(role string) []models.AppointmentStatus {
	switch role {
	case models.RolePatient, models.RoleAdmin:
		return []models.AppointmentStatus{
			models.StatusReserved,
			models.StatusPaymentPending,
			models.StatusPaid,
		}
	case models.RoleDoctor:
		return []models.AppointmentStatus{models.StatusPaid}
	}
	return nil
}

func (s *DefaultBookingService) CancelAppointment(ctx context.Context, appointmentID, actorID, actorRole string) error {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	switch actorRole {
	case models.RolePatient:
		if appt.PatientID != actorID {
			return NewAuthorizationError("appointment belongs to a different patient")
		}
	case models.RoleDoctor:
		if appt.DoctorID != actorID {
			return NewAuthorizationError("appointment belongs to a different doctor")
		}
	case models.RoleAdmin:
		// Back office may cancel anything still live.
	default:
		return NewAuthorizationError("unknown actor role")
	}

	from := cancellableFrom(actorRole)
	applied, err := s.Appointments.Transition(ctx, appt.ID, from, models.StatusCancelled)
	if err != nil {
		return err
	}
	if !applied {
		current, err := s.getAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if actorRole == models.RoleDoctor && current.Status != models.StatusPaid && !current.Status.IsTerminal() {
			return NewAuthorizationError("doctors may only cancel paid appointments")
		}
		return NewInvalidTransitionError(fmt.Sprintf("cannot cancel a %s appointment", current.Status))
	}

	s.Ledger.Release(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime)
	s.Logger.Info("appointment cancelled",
		zap.String("appointment", appt.ID),
		zap.String("actor", actorID),
		zap.String("role", actorRole))
	return nil
}

func (s *DefaultBookingService) CompleteAppointment(ctx context.Context, appointmentID, doctorID string) error {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.DoctorID != doctorID {
		return NewAuthorizationError("only the treating doctor may complete an appointment")
	}

	applied, err := s.Appointments.Transition(ctx, appt.ID,
		allowedFrom(models.StatusCompleted), models.StatusCompleted)
	if err != nil {
		return err
	}
	if !applied {
		current, err := s.getAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		return NewInvalidTransitionError(fmt.Sprintf("cannot complete a %s appointment", current.Status))
	}

	// Completion keeps the slot recorded as used; no release.
	s.Logger.Info("appointment completed", zap.String("appointment", appt.ID))
	return nil
}

func (s *DefaultBookingService) ListForPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return s.Appointments.ListByPatient(ctx, patientID)
}

func (s *DefaultBookingService) ListForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return s.Appointments.ListByDoctor(ctx, doctorID)
}

func (s *DefaultBookingService) Availability(ctx context.Context, doctorID, date string) ([]string, error) {
	if !utils.IsValidSlotDate(date) {
		return nil, NewValidationError("date must be formatted YYYY-MM-DD")
	}
	return s.Ledger.Available(ctx, doctorID, date)
}

func (s *DefaultBookingService) getAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, NewNotFoundError("appointment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("appointment lookup failed: %w", err)
	}
	return appt, nil
}
