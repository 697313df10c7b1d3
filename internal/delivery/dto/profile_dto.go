package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpdateProfileRequest edits the caller's own profile. Role cannot change here.
type UpdateProfileRequest struct {
	FirstName         string           `json:"first_name" validate:"required,max=100"`
	LastName          string           `json:"last_name" validate:"omitempty,max=100"`
	Bio               string           `json:"bio" validate:"omitempty,max=2000"`
	Address           string           `json:"address" validate:"omitempty,max=500"`
	Phone             string           `json:"phone" validate:"omitempty,min=6,max=30"`
	DateOfBirth       string           `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Languages         []string         `json:"languages" validate:"omitempty,dive,min=2,max=50"`
	Specialty         string           `json:"specialty" validate:"omitempty,max=100"`
	YearsOfExperience int              `json:"years_of_experience" validate:"gte=0,lte=80"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee"`
	LicenseNumber     string           `json:"license_number" validate:"omitempty,max=50"`
}

// AdminUpdateProfileRequest lets an admin change any profile, role included.
type AdminUpdateProfileRequest struct {
	UpdateProfileRequest
	Role string `json:"role" validate:"required,oneof=patient doctor admin"`
}

type DoctorListQuery struct {
	Specialty string
}

// Response DTOs

type ProfileResponse struct {
	ID                uuid.UUID        `json:"id"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	FullName          string           `json:"full_name"`
	Role              string           `json:"role"`
	IsDoctor          bool             `json:"is_doctor"`
	Specialty         string           `json:"specialty,omitempty"`
	YearsOfExperience int              `json:"years_of_experience,omitempty"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee,omitempty"`
	LicenseNumber     string           `json:"license_number,omitempty"`
	Bio               string           `json:"bio,omitempty"`
	Languages         []string         `json:"languages,omitempty"`
	Address           string           `json:"address,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	DateOfBirth       string           `json:"date_of_birth,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// SessionResponse is the resolved session: the tagged status, the profile
// (nil for anonymous and unavailable) and the derived navigation flags.
type SessionResponse struct {
	Status   string           `json:"status"`
	Profile  *ProfileResponse `json:"profile"`
	IsAdmin  bool             `json:"is_admin"`
	IsDoctor bool             `json:"is_doctor"`
}
