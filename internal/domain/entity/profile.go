package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Profile is the application-level user record. ID equals the identity ID.
//
// IsDoctor is persisted for queries but always derived from Role when the
// row is saved, so the two columns cannot disagree.
type Profile struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName         string          `gorm:"type:varchar(100)" json:"first_name"`
	LastName          string          `gorm:"type:varchar(100)" json:"last_name"`
	Role              Role            `gorm:"type:varchar(20);not null;default:'patient';index" json:"role"`
	IsDoctor          bool            `gorm:"not null;default:false;index" json:"is_doctor"`
	Specialty         string          `gorm:"type:varchar(100);index" json:"specialty,omitempty"`
	YearsOfExperience int             `gorm:"default:0" json:"years_of_experience,omitempty"`
	ConsultationFee   decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"consultation_fee"`
	Bio               string          `gorm:"type:text" json:"bio,omitempty"`
	Languages         []string        `gorm:"type:text;serializer:json" json:"languages,omitempty"`
	LicenseNumber     string          `gorm:"type:varchar(50)" json:"license_number,omitempty"`
	Address           string          `gorm:"type:text" json:"address,omitempty"`
	Phone             string          `gorm:"type:varchar(30)" json:"phone,omitempty"`
	DateOfBirth       *time.Time      `gorm:"type:date" json:"date_of_birth,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeSave(tx *gorm.DB) error {
	p.normalize()
	return nil
}

// normalize enforces the role invariants: only doctors carry practice data.
func (p *Profile) normalize() {
	if _, ok := ParseRole(string(p.Role)); !ok {
		p.Role = RolePatient
	}
	p.IsDoctor = p.Role == RoleDoctor
	if !p.IsDoctor {
		p.Specialty = ""
		p.YearsOfExperience = 0
		p.ConsultationFee = decimal.Zero
		p.LicenseNumber = ""
	}
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// RoleVariant is the tagged form of a profile's role. Exactly one of
// PatientRole, DoctorRole and AdminRole implements it.
type RoleVariant interface {
	Role() Role
}

type PatientRole struct{}

func (PatientRole) Role() Role { return RolePatient }

type AdminRole struct{}

func (AdminRole) Role() Role { return RoleAdmin }

// DoctorRole carries the practice fields that only exist for doctors.
type DoctorRole struct {
	Specialty         string
	YearsOfExperience int
	ConsultationFee   decimal.Decimal
	LicenseNumber     string
}

func (DoctorRole) Role() Role { return RoleDoctor }

// Variant returns the profile's role as a tagged value.
func (p *Profile) Variant() RoleVariant {
	switch p.Role {
	case RoleAdmin:
		return AdminRole{}
	case RoleDoctor:
		return DoctorRole{
			Specialty:         p.Specialty,
			YearsOfExperience: p.YearsOfExperience,
			ConsultationFee:   p.ConsultationFee,
			LicenseNumber:     p.LicenseNumber,
		}
	default:
		return PatientRole{}
	}
}

// SetVariant replaces the role and practice fields together.
func (p *Profile) SetVariant(v RoleVariant) {
	p.Role = v.Role()
	if d, ok := v.(DoctorRole); ok {
		p.Specialty = d.Specialty
		p.YearsOfExperience = d.YearsOfExperience
		p.ConsultationFee = d.ConsultationFee
		p.LicenseNumber = d.LicenseNumber
	}
	p.normalize()
}

// ProfileFilter narrows profile listings.
type ProfileFilter struct {
	Role      Role
	Specialty string // ILIKE
}
