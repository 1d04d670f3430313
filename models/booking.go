package models

// BookingRequest is the payload for creating a new appointment.
type BookingRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	SlotDate string `json:"slotDate" binding:"required"` // "2006-01-02"
	SlotTime string `json:"slotTime" binding:"required"` // e.g. "09:00 AM"
}

// AppointmentActionRequest targets an existing appointment (cancel/complete).
type AppointmentActionRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// AvailabilityResponse lists the free time labels for a doctor on a date.
type AvailabilityResponse struct {
	DoctorID  string   `json:"doctorId"`
	Date      string   `json:"date"`
	FreeSlots []string `json:"freeSlots"`
}
