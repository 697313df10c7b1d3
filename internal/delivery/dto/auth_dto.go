package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// SignUpRequest registers a patient or a doctor. Doctor fields are ignored for patients.
type SignUpRequest struct {
	Email             string           `json:"email" validate:"required,email"`
	Password          string           `json:"password" validate:"required,min=6"`
	FirstName         string           `json:"first_name" validate:"required,min=1,max=100"`
	LastName          string           `json:"last_name" validate:"omitempty,max=100"`
	Role              string           `json:"role" validate:"required,oneof=patient doctor"`
	Phone             string           `json:"phone" validate:"omitempty,min=6,max=30"`
	Specialty         string           `json:"specialty" validate:"required_if=Role doctor,omitempty,max=100"`
	YearsOfExperience int              `json:"years_of_experience" validate:"gte=0,lte=80"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee"`
	LicenseNumber     string           `json:"license_number" validate:"required_if=Role doctor,omitempty,max=50"`
	Languages         []string         `json:"languages" validate:"omitempty,dive,min=2,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type IdentityResponse struct {
	ID        uuid.UUID              `json:"id"`
	Email     string                 `json:"email"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type SignUpResponse struct {
	Identity IdentityResponse `json:"identity"`
	Profile  *ProfileResponse `json:"profile"`
}
