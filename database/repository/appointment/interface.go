package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"medibook/models"
)

// ErrNotFound is returned when no appointment matches the given identifier.
var ErrNotFound = errors.New("appointment not found")

// AppointmentRepository defines persistence for appointments. Transition is
// the single status mutator: every lifecycle change goes through its
// compare-and-set so concurrent writers (request handlers, the expiry sweep)
// serialize on the stored status.
type AppointmentRepository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)

	// Transition moves the appointment from any of the expected predecessor
	// states to the target state. It reports false when the conditional
	// update matched nothing, i.e. the appointment does not exist or its
	// current status is not in from.
	Transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (bool, error)

	// SetPaymentRef records the provider session reference for the
	// appointment. Overwrites any previous reference.
	SetPaymentRef(ctx context.Context, id, ref string) error

	// FindExpired returns appointments still holding a slot whose
	// reservation deadline passed before now.
	FindExpired(ctx context.Context, now time.Time, limit int64) ([]models.Appointment, error)

	// CountByStatus returns per-status appointment counts for dashboards.
	CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error)
}
