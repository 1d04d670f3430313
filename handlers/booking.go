package handlers

import (
	"medibook/middleware"
	"medibook/models"
	"medibook/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the appointment booking surface.
type BookingHandler struct {
	Booking    booking.BookingService
	Reconciler booking.ReconciliationService
	Logger     *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, rec booking.ReconciliationService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Booking: svc, Reconciler: rec, Logger: logger}
}

// BookAppointment creates a Reserved appointment for the signed-in patient.
func (h *BookingHandler) BookAppointment(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid booking payload: "+err.Error())
		return
	}

	patientID := c.GetString(middleware.CtxActorID)
	appt, err := h.Booking.BookAppointment(c.Request.Context(), patientID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"appointment": appt})
}

// RequestPayment creates a checkout session for an appointment and returns
// the hosted payment URL.
func (h *BookingHandler) RequestPayment(c *gin.Context) {
	appointmentID := c.Param("appointmentId")
	if appointmentID == "" {
		respondBadRequest(c, "missing appointment id")
		return
	}

	patientID := c.GetString(middleware.CtxActorID)
	sess, err := h.Booking.RequestPayment(c.Request.Context(), appointmentID, patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"checkoutUrl": sess.URL, "reference": sess.Reference})
}

// VerifyPayment performs a server-to-server status check with the payment
// provider and applies the outcome. The client never supplies the outcome.
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	appointmentID := c.Query("appointmentId")
	if appointmentID == "" {
		respondBadRequest(c, "missing appointmentId query parameter")
		return
	}

	status, err := h.Reconciler.VerifyAndConfirm(c.Request.Context(), appointmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"status": status})
}

// CancelAppointment cancels on behalf of whichever role the token carries.
func (h *BookingHandler) CancelAppointment(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid cancel payload: "+err.Error())
		return
	}

	actorID := c.GetString(middleware.CtxActorID)
	role := c.GetString(middleware.CtxRole)
	if err := h.Booking.CancelAppointment(c.Request.Context(), req.AppointmentID, actorID, role); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "appointment cancelled"})
}

// CompleteAppointment marks a paid appointment completed (treating doctor only).
func (h *BookingHandler) CompleteAppointment(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid complete payload: "+err.Error())
		return
	}

	doctorID := c.GetString(middleware.CtxActorID)
	if err := h.Booking.CompleteAppointment(c.Request.Context(), req.AppointmentID, doctorID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "appointment completed"})
}

// ListPatientAppointments lists the signed-in patient's appointments.
func (h *BookingHandler) ListPatientAppointments(c *gin.Context) {
	patientID := c.GetString(middleware.CtxActorID)
	appts, err := h.Booking.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

// ListDoctorAppointments lists the signed-in doctor's appointments.
func (h *BookingHandler) ListDoctorAppointments(c *gin.Context) {
	doctorID := c.GetString(middleware.CtxActorID)
	appts, err := h.Booking.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

// Availability returns the free time labels for a doctor on a date.
func (h *BookingHandler) Availability(c *gin.Context) {
	doctorID := c.Param("doctorId")
	date := c.Query("date")
	if date == "" {
		respondBadRequest(c, "missing date query parameter")
		return
	}

	free, err := h.Booking.Availability(c.Request.Context(), doctorID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"availability": models.AvailabilityResponse{
		DoctorID:  doctorID,
		Date:      date,
		FreeSlots: free,
	}})
}
