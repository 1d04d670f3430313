package handlers

import (
	"medibook/middleware"
	"medibook/services/doctor"

	"github.com/gin-gonic/gin"
)

// DoctorHandler exposes practitioner endpoints.
type DoctorHandler struct {
	Doctors doctor.DoctorService
}

func NewDoctorHandler(svc doctor.DoctorService) *DoctorHandler {
	return &DoctorHandler{Doctors: svc}
}

func (h *DoctorHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid login payload: "+err.Error())
		return
	}

	resp, err := h.Doctors.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUnauthorized(c, err.Error())
		return
	}
	respondOK(c, gin.H{"token": resp.Token, "doctor": resp.Doctor})
}

// List returns the public doctor directory.
func (h *DoctorHandler) List(c *gin.Context) {
	docs, err := h.Doctors.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"doctors": docs})
}

// ChangeAvailability flips the signed-in doctor's availability flag.
func (h *DoctorHandler) ChangeAvailability(c *gin.Context) {
	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid availability payload: "+err.Error())
		return
	}

	doctorID := c.GetString(middleware.CtxActorID)
	if err := h.Doctors.SetAvailability(c.Request.Context(), doctorID, *req.Available); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"available": *req.Available})
}

func (h *DoctorHandler) GetProfile(c *gin.Context) {
	doctorID := c.GetString(middleware.CtxActorID)
	doc, err := h.Doctors.GetByID(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"doctor": doc.PublicView()})
}

func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Fee   *float64 `json:"fee"`
		About string   `json:"about"`
		Line1 string   `json:"addressLine1"`
		Line2 string   `json:"addressLine2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid profile payload: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Fee != nil {
		if *req.Fee <= 0 {
			respondBadRequest(c, "fee must be positive")
			return
		}
		fields["fee"] = *req.Fee
	}
	if req.About != "" {
		fields["about"] = req.About
	}
	if req.Line1 != "" || req.Line2 != "" {
		fields["address"] = map[string]string{"line1": req.Line1, "line2": req.Line2}
	}
	if len(fields) == 0 {
		respondBadRequest(c, "no profile fields to update")
		return
	}

	doctorID := c.GetString(middleware.CtxActorID)
	doc, err := h.Doctors.UpdateProfile(c.Request.Context(), doctorID, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"doctor": doc.PublicView()})
}
