package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity metadata keys written at sign up.
const (
	MetaFirstName         = "first_name"
	MetaLastName          = "last_name"
	MetaRole              = "role"
	MetaSpecialty         = "specialty"
	MetaYearsOfExperience = "years_of_experience"
	MetaConsultationFee   = "consultation_fee"
	MetaLicenseNumber     = "license_number"
	MetaLanguages         = "languages"
	MetaPhone             = "phone"
)

// User is the identity record owned by the auth module. Profile rows share its ID.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Identity returns the view of the user that the rest of the system consumes.
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	return &Identity{ID: u.ID, Email: u.Email, Metadata: u.Metadata}
}

// Identity is the authenticated principal: id, email and the metadata map
// captured at sign up. It is read-only outside the auth module.
type Identity struct {
	ID       uuid.UUID
	Email    string
	Metadata JSON
}
