package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	doctorRepo "medibook/database/repository/doctor"
	"medibook/models"
	"medibook/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of an issued doctor token.
const TokenTTL = 72 * time.Hour

// directoryCacheKey holds the cached public directory. Short TTL so
// availability flips show up quickly.
const (
	directoryCacheKey = "doctors:directory"
	directoryCacheTTL = 60 * time.Second
)

// InvalidateDirectoryCache drops the cached public directory. Called after
// any write that changes what the directory shows.
func InvalidateDirectoryCache(ctx context.Context) {
	utils.GetCacheClient().Del(ctx, directoryCacheKey)
}

// AuthResponse carries the outcome of a successful doctor authentication.
type AuthResponse struct {
	Doctor models.DoctorDTO `json:"doctor"`
	Token  string           `json:"token"`
}

// DoctorService manages practitioner accounts and their public directory.
type DoctorService interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResponse, error)
	ListPublic(ctx context.Context) ([]models.DoctorDTO, error)
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.Doctor, error)
}

// DefaultDoctorService is the production implementation.
type DefaultDoctorService struct {
	Repo doctorRepo.DoctorRepository
}

func (s *DefaultDoctorService) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	doc, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, doctorRepo.ErrNotFound) {
		return nil, errors.New("invalid email or password")
	}
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch doctor", zap.Error(err))
		return nil, errors.New("authentication failed, please try again")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := utils.GenerateToken(doc.ID, models.RoleDoctor, TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	cacheKey := utils.AuthCachePrefix + doc.ID
	if err := utils.GetAuthCacheClient().Set(ctx, cacheKey, utils.HashToken(token), TokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to cache token hash: %w", err)
	}

	return &AuthResponse{Doctor: doc.PublicView(), Token: token}, nil
}

func (s *DefaultDoctorService) ListPublic(ctx context.Context) ([]models.DoctorDTO, error) {
	if raw, err := utils.GetCacheClient().Get(ctx, directoryCacheKey).Result(); err == nil {
		var cached []models.DoctorDTO
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.DoctorDTO, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].PublicView())
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := utils.GetCacheClient().Set(ctx, directoryCacheKey, raw, directoryCacheTTL).Err(); err != nil {
			utils.GetLogger().Warn("ListPublic: failed to cache directory", zap.Error(err))
		}
	}
	return out, nil
}

func (s *DefaultDoctorService) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultDoctorService) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := s.Repo.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	InvalidateDirectoryCache(ctx)
	return nil
}

func (s *DefaultDoctorService) UpdateProfile(ctx context.Context, id string, fields map[string]interface{}) (*models.Doctor, error) {
	// Fee changes here never touch existing appointments: Amount is a
	// snapshot taken at booking time.
	delete(fields, "password_hash")
	delete(fields, "email")
	delete(fields, "id")
	delete(fields, "slots_booked")

	if err := s.Repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	InvalidateDirectoryCache(ctx)
	return s.Repo.GetByID(ctx, id)
}
