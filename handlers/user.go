package handlers

import (
	"medibook/middleware"
	"medibook/services/triage"
	"medibook/services/user"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes patient account endpoints.
type UserHandler struct {
	Users  user.UserService
	Triage triage.TriageService
}

func NewUserHandler(users user.UserService, triageSvc triage.TriageService) *UserHandler {
	return &UserHandler{Users: users, Triage: triageSvc}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid registration payload: "+err.Error())
		return
	}

	resp, err := h.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, gin.H{"token": resp.Token, "user": resp.User})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid login payload: "+err.Error())
		return
	}

	resp, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondUnauthorized(c, err.Error())
		return
	}
	respondOK(c, gin.H{"token": resp.Token, "user": resp.User})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.CtxActorID)
	u, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user": u})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		PhoneNumber string `json:"phoneNumber"`
		Gender      string `json:"gender"`
		DateOfBirth string `json:"dateOfBirth"`
		Line1       string `json:"addressLine1"`
		Line2       string `json:"addressLine2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid profile payload: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		fields["phone_number"] = req.PhoneNumber
	}
	if req.Gender != "" {
		fields["gender"] = req.Gender
	}
	if req.DateOfBirth != "" {
		fields["date_of_birth"] = req.DateOfBirth
	}
	if req.Line1 != "" || req.Line2 != "" {
		fields["address"] = map[string]string{"line1": req.Line1, "line2": req.Line2}
	}
	if len(fields) == 0 {
		respondBadRequest(c, "no profile fields to update")
		return
	}

	userID := c.GetString(middleware.CtxActorID)
	u, err := h.Users.UpdateProfile(c.Request.Context(), userID, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"user": u})
}

// SuggestSpecialist forwards symptoms to the triage collaborator.
func (h *UserHandler) SuggestSpecialist(c *gin.Context) {
	var req struct {
		Symptoms string `json:"symptoms" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid triage payload: "+err.Error())
		return
	}

	suggestion, err := h.Triage.Suggest(c.Request.Context(), req.Symptoms)
	if err != nil {
		respondUpstream(c, "triage is temporarily unavailable")
		return
	}
	respondOK(c, gin.H{"suggestion": suggestion})
}
