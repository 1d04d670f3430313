package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotTimeUniverse(t *testing.T) {
	assert.Len(t, SlotTimes, 24)
	assert.True(t, IsValidSlotTime("09:00 AM"))
	assert.True(t, IsValidSlotTime("08:30 PM"))
	assert.False(t, IsValidSlotTime("08:45 AM"))
	assert.False(t, IsValidSlotTime("9:00 AM"))
	assert.False(t, IsValidSlotTime(""))
}

func TestIsValidSlotDate(t *testing.T) {
	assert.True(t, IsValidSlotDate("2024-06-10"))
	assert.False(t, IsValidSlotDate("10-06-2024"))
	assert.False(t, IsValidSlotDate("2024-6-10"))
	assert.False(t, IsValidSlotDate("2024-06-10T00:00:00Z"))
}
