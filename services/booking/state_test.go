package booking

import (
	"testing"

	"medibook/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := []struct {
		from, to models.AppointmentStatus
	}{
		{models.StatusReserved, models.StatusPaymentPending},
		{models.StatusPaymentPending, models.StatusPaid},
		{models.StatusPaymentPending, models.StatusPaymentFailed},
		{models.StatusPaid, models.StatusCompleted},
		{models.StatusReserved, models.StatusCancelled},
		{models.StatusPaymentPending, models.StatusCancelled},
		{models.StatusPaid, models.StatusCancelled},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from, to models.AppointmentStatus
	}{
		{models.StatusReserved, models.StatusPaid},
		{models.StatusReserved, models.StatusCompleted},
		{models.StatusCompleted, models.StatusCancelled},
		{models.StatusCancelled, models.StatusPaymentPending},
		{models.StatusCancelled, models.StatusCompleted},
		{models.StatusPaymentFailed, models.StatusPaid},
		{models.StatusPaid, models.StatusPaymentFailed},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []models.AppointmentStatus{
		models.StatusCompleted, models.StatusCancelled, models.StatusPaymentFailed,
	} {
		assert.True(t, s.IsTerminal())
		// No transition may leave a terminal state.
		for to := range transitions {
			assert.False(t, CanTransition(s, to), "%s must be terminal", s)
		}
	}

	for _, s := range []models.AppointmentStatus{
		models.StatusReserved, models.StatusPaymentPending, models.StatusPaid,
	} {
		assert.False(t, s.IsTerminal())
	}
}

func TestReleasesSlot(t *testing.T) {
	assert.True(t, releasesSlot(models.StatusCancelled))
	assert.True(t, releasesSlot(models.StatusPaymentFailed))
	// Completion keeps the slot recorded as used.
	assert.False(t, releasesSlot(models.StatusCompleted))
	assert.False(t, releasesSlot(models.StatusPaid))
}
