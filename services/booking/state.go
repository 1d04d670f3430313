package booking

import "medibook/models"

// transitions is the appointment lifecycle table. Key is the target state;
// value lists the states it may be entered from. Terminal states (Completed,
// Cancelled, PaymentFailed) never appear as predecessors of anything.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPaymentPending: {models.StatusReserved},
	models.StatusPaid:           {models.StatusPaymentPending},
	models.StatusPaymentFailed:  {models.StatusPaymentPending},
	models.StatusCompleted:      {models.StatusPaid},
	models.StatusCancelled: {
		models.StatusReserved,
		models.StatusPaymentPending,
		models.StatusPaid,
	},
}

// allowedFrom returns the valid predecessor states for entering to.
func allowedFrom(to models.AppointmentStatus) []models.AppointmentStatus {
	return transitions[to]
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, s := range allowedFrom(to) {
		if s == from {
			return true
		}
	}
	return false
}

// releasesSlot reports whether entering to hands the slot back to the
// ledger. Completion keeps the slot recorded as used.
func releasesSlot(to models.AppointmentStatus) bool {
	return to == models.StatusCancelled || to == models.StatusPaymentFailed
}
