package handlers

import (
	"medibook/middleware"
	"medibook/models"
	"medibook/services/admin"
	"medibook/services/booking"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the back-office endpoints.
type AdminHandler struct {
	Admin   admin.AdminService
	Booking booking.BookingService
}

func NewAdminHandler(adminSvc admin.AdminService, bookingSvc booking.BookingService) *AdminHandler {
	return &AdminHandler{Admin: adminSvc, Booking: bookingSvc}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid login payload: "+err.Error())
		return
	}

	token, err := h.Admin.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUnauthorized(c, err.Error())
		return
	}
	respondOK(c, gin.H{"token": token})
}

func (h *AdminHandler) AddDoctor(c *gin.Context) {
	var input admin.OnboardDoctorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "invalid doctor payload: "+err.Error())
		return
	}

	doc, err := h.Admin.OnboardDoctor(c.Request.Context(), input)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, gin.H{"doctor": doc.PublicView()})
}

func (h *AdminHandler) ListDoctors(c *gin.Context) {
	docs, err := h.Admin.ListDoctors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.DoctorDTO, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].PublicView())
	}
	respondOK(c, gin.H{"doctors": out})
}

func (h *AdminHandler) ListAppointments(c *gin.Context) {
	appts, err := h.Admin.ListAppointments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"appointments": appts})
}

// CancelAppointment lets the back office cancel any live appointment.
func (h *AdminHandler) CancelAppointment(c *gin.Context) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid cancel payload: "+err.Error())
		return
	}

	actorID := c.GetString(middleware.CtxActorID)
	if err := h.Booking.CancelAppointment(c.Request.Context(), req.AppointmentID, actorID, models.RoleAdmin); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "appointment cancelled"})
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dash, err := h.Admin.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"dashboard": dash})
}

// RebuildCalendar re-derives a doctor's booked-slot view from the ledger.
func (h *AdminHandler) RebuildCalendar(c *gin.Context) {
	doctorID := c.Param("doctorId")
	if doctorID == "" {
		respondBadRequest(c, "missing doctor id")
		return
	}
	if err := h.Admin.RebuildDoctorCalendar(c.Request.Context(), doctorID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "calendar rebuilt"})
}

func (h *AdminHandler) PublishArticle(c *gin.Context) {
	var req struct {
		Title     string `json:"title" binding:"required"`
		Summary   string `json:"summary"`
		Body      string `json:"body" binding:"required"`
		Author    string `json:"author"`
		Published *bool  `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid article payload: "+err.Error())
		return
	}

	article := &models.Article{
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		Author:    req.Author,
		Published: req.Published == nil || *req.Published,
	}
	if err := h.Admin.PublishArticle(c.Request.Context(), article); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"article": article})
}

func (h *AdminHandler) UpdateArticle(c *gin.Context) {
	var req struct {
		Title     string `json:"title"`
		Summary   string `json:"summary"`
		Body      string `json:"body"`
		Published *bool  `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid article payload: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Summary != "" {
		fields["summary"] = req.Summary
	}
	if req.Body != "" {
		fields["body"] = req.Body
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}
	if len(fields) == 0 {
		respondBadRequest(c, "no article fields to update")
		return
	}

	if err := h.Admin.UpdateArticle(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "article updated"})
}

func (h *AdminHandler) DeleteArticle(c *gin.Context) {
	if err := h.Admin.DeleteArticle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "article deleted"})
}
