package doctorRepo

import (
	"context"
	"errors"

	"medibook/models"
)

// ErrSlotTaken is returned by ReserveSlot when the conditional update lost
// to an existing booking for the same (date, time).
var ErrSlotTaken = errors.New("slot already booked")

// ErrNotFound is returned when no doctor matches the given identifier.
var ErrNotFound = errors.New("doctor not found")

// DoctorRepository defines persistence for doctors, including the atomic
// slot-set operations the slot ledger is built on.
type DoctorRepository interface {
	Insert(ctx context.Context, doc *models.Doctor) error
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	List(ctx context.Context) ([]models.Doctor, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	SetAvailability(ctx context.Context, id string, available bool) error

	// ReserveSlot atomically adds slotTime to the doctor's booked set for
	// date. It fails with ErrSlotTaken if the time is already present and
	// with ErrNotFound if the doctor does not exist. Never read-then-write.
	ReserveSlot(ctx context.Context, id, date, slotTime string) error

	// ReleaseSlot removes slotTime from the booked set for date. Removing a
	// time that is not present is a no-op, not an error.
	ReleaseSlot(ctx context.Context, id, date, slotTime string) error

	// BookedSlots returns the taken time labels for the given date.
	BookedSlots(ctx context.Context, id, date string) ([]string, error)

	// RebuildSlotCalendar re-derives the doctor's whole booked calendar from
	// the live appointments. Repair tool for the derived-view invariant.
	RebuildSlotCalendar(ctx context.Context, id string) error
}
