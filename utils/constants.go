package utils

import "time"

// SlotDateLayout is the calendar-date format used as the booking key.
const SlotDateLayout = "2006-01-02"

// SlotTimeLayout is the display format of a bookable time label.
const SlotTimeLayout = "03:04 PM"

// SlotTimes is the fixed universe of bookable time labels: half-hour
// slots from 09:00 AM through 08:30 PM. Every Appointment.SlotTime must
// be one of these.
var SlotTimes = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM",
	"11:00 AM", "11:30 AM", "12:00 PM", "12:30 PM",
	"01:00 PM", "01:30 PM", "02:00 PM", "02:30 PM",
	"03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM",
	"05:00 PM", "05:30 PM", "06:00 PM", "06:30 PM",
	"07:00 PM", "07:30 PM", "08:00 PM", "08:30 PM",
}

var slotTimeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SlotTimes))
	for _, t := range SlotTimes {
		m[t] = struct{}{}
	}
	return m
}()

// IsValidSlotTime reports whether label belongs to the fixed slot universe.
func IsValidSlotTime(label string) bool {
	_, ok := slotTimeSet[label]
	return ok
}

// IsValidSlotDate reports whether date is a well-formed YYYY-MM-DD string.
func IsValidSlotDate(date string) bool {
	_, err := time.Parse(SlotDateLayout, date)
	return err == nil
}
