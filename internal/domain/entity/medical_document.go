package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedicalDocument is the metadata row for a blob in the document bucket.
// The row and the blob at FilePath are created and deleted together.
type MedicalDocument struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  *uuid.UUID `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	FilePath  string     `gorm:"type:text;not null" json:"file_path"`
	FileType  string     `gorm:"type:varchar(100)" json:"file_type"`
	FileSize  int64      `gorm:"default:0" json:"file_size"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MedicalDocument) TableName() string {
	return "medical_documents"
}

func (d *MedicalDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// CanRead reports whether the given identity may download the document.
func (d *MedicalDocument) CanRead(userID uuid.UUID, flags RoleFlags) bool {
	if flags.IsAdmin || d.PatientID == userID {
		return true
	}
	return d.DoctorID != nil && *d.DoctorID == userID
}
