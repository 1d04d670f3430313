package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/config"
	appointmentRepo "medibook/database/repository/appointment"
	articleRepo "medibook/database/repository/article"
	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
	"medibook/services/doctor"
	"medibook/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of an issued admin token.
const TokenTTL = 24 * time.Hour

// adminSubject is the token subject for the bootstrapped back-office account.
const adminSubject = "admin"

// OnboardDoctorInput is the payload for registering a new practitioner.
type OnboardDoctorInput struct {
	Name       string         `json:"name" binding:"required"`
	Email      string         `json:"email" binding:"required,email"`
	Password   string         `json:"password" binding:"required,min=8"`
	Speciality string         `json:"speciality" binding:"required"`
	Degree     string         `json:"degree"`
	Experience string         `json:"experience"`
	About      string         `json:"about"`
	Fee        float64        `json:"fee" binding:"required,gt=0"`
	Address    models.Address `json:"address"`
	ImageURL   string         `json:"imageUrl"`
}

// Dashboard summarizes the back-office landing view.
type Dashboard struct {
	Doctors      int                                `json:"doctors"`
	Appointments map[models.AppointmentStatus]int64 `json:"appointments"`
	Latest       []models.Appointment               `json:"latestAppointments"`
}

// AdminService is the back-office surface: doctor onboarding, oversight of
// the appointment ledger, and article publishing.
type AdminService interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
	OnboardDoctor(ctx context.Context, input OnboardDoctorInput) (*models.Doctor, error)
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	GetDashboard(ctx context.Context) (*Dashboard, error)

	// RebuildDoctorCalendar re-derives a doctor's booked-slot view from the
	// appointment ledger. Repair tool for calendar drift.
	RebuildDoctorCalendar(ctx context.Context, doctorID string) error

	PublishArticle(ctx context.Context, article *models.Article) error
	UpdateArticle(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteArticle(ctx context.Context, id string) error
}

// DefaultAdminService is the production implementation.
type DefaultAdminService struct {
	Doctors      doctorRepo.DoctorRepository
	Appointments appointmentRepo.AppointmentRepository
	Articles     articleRepo.ArticleRepository
}

// Authenticate checks the config-bootstrapped back-office credentials and
// issues an admin token.
func (s *DefaultAdminService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if config.AppConfig.AdminEmail == "" || config.AppConfig.AdminPassword == "" {
		return "", errors.New("admin access is not configured")
	}
	if email != config.AppConfig.AdminEmail || password != config.AppConfig.AdminPassword {
		return "", errors.New("invalid admin credentials")
	}

	token, err := utils.GenerateToken(adminSubject, models.RoleAdmin, TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	cacheKey := utils.AuthCachePrefix + adminSubject
	if err := utils.GetAuthCacheClient().Set(ctx, cacheKey, utils.HashToken(token), TokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to cache token hash: %w", err)
	}
	return token, nil
}

func (s *DefaultAdminService) OnboardDoctor(ctx context.Context, input OnboardDoctorInput) (*models.Doctor, error) {
	if existing, err := s.Doctors.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.New("a doctor with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	doc := &models.Doctor{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Speciality:   input.Speciality,
		Degree:       input.Degree,
		Experience:   input.Experience,
		About:        input.About,
		Fee:          input.Fee,
		Address:      input.Address,
		ImageURL:     input.ImageURL,
		Available:    true,
		SlotsBooked:  map[string][]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Doctors.Insert(ctx, doc); err != nil {
		return nil, err
	}
	doctor.InvalidateDirectoryCache(ctx)
	return doc, nil
}

func (s *DefaultAdminService) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	return s.Doctors.List(ctx)
}

func (s *DefaultAdminService) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return s.Appointments.ListAll(ctx)
}

func (s *DefaultAdminService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	doctors, err := s.Doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.Appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.Appointments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(latest) > 5 {
		latest = latest[:5]
	}
	return &Dashboard{
		Doctors:      len(doctors),
		Appointments: counts,
		Latest:       latest,
	}, nil
}

func (s *DefaultAdminService) RebuildDoctorCalendar(ctx context.Context, doctorID string) error {
	return s.Doctors.RebuildSlotCalendar(ctx, doctorID)
}

func (s *DefaultAdminService) PublishArticle(ctx context.Context, article *models.Article) error {
	now := time.Now()
	article.ID = uuid.New().String()
	article.CreatedAt = now
	article.UpdatedAt = now
	return s.Articles.Insert(ctx, article)
}

func (s *DefaultAdminService) UpdateArticle(ctx context.Context, id string, fields map[string]interface{}) error {
	delete(fields, "id")
	return s.Articles.UpdateFields(ctx, id, fields)
}

func (s *DefaultAdminService) DeleteArticle(ctx context.Context, id string) error {
	return s.Articles.Delete(ctx, id)
}
