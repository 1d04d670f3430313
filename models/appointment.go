package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusReserved       AppointmentStatus = "reserved"
	StatusPaymentPending AppointmentStatus = "payment_pending"
	StatusPaid           AppointmentStatus = "paid"
	StatusCompleted      AppointmentStatus = "completed"
	StatusCancelled      AppointmentStatus = "cancelled"
	StatusPaymentFailed  AppointmentStatus = "payment_failed"
)

// LiveStatuses are the states that hold a slot. An appointment in any of
// these states keeps its (doctor, date, time) tuple out of circulation.
var LiveStatuses = []AppointmentStatus{
	StatusReserved,
	StatusPaymentPending,
	StatusPaid,
	StatusCompleted,
}

// IsTerminal reports whether no further transition may leave s.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusPaymentFailed:
		return true
	}
	return false
}

// Appointment is the ledger record of one booked slot.
//
// Amount is a snapshot of the doctor's fee at booking time and never changes
// afterwards. Cancelled mirrors Status == StatusCancelled for older API
// consumers; Status is authoritative.
type Appointment struct {
	ID                string            `bson:"id" json:"id"`
	DoctorID          string            `bson:"doctor_id" json:"doctor_id"`
	PatientID         string            `bson:"patient_id" json:"patient_id"`
	SlotDate          string            `bson:"slot_date" json:"slot_date"` // "2006-01-02"
	SlotTime          string            `bson:"slot_time" json:"slot_time"` // e.g. "09:00 AM"
	Amount            float64           `bson:"amount" json:"amount"`
	Status            AppointmentStatus `bson:"status" json:"status"`
	Cancelled         bool              `bson:"cancelled" json:"cancelled"`
	PaymentRef        string            `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"`
	ReservedAt        time.Time         `bson:"reserved_at" json:"reserved_at"`
	ReservationExpiry time.Time         `bson:"reservation_expiry" json:"reservation_expiry"`
	CreatedAt         time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `bson:"updated_at" json:"updated_at"`

	// Denormalized display fields captured at booking time.
	DoctorName string `bson:"doctor_name,omitempty" json:"doctor_name,omitempty"`
	Speciality string `bson:"speciality,omitempty" json:"speciality,omitempty"`
}
