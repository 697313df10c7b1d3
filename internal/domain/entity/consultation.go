package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationStatus string

const (
	ConsultationStatusWaiting ConsultationStatus = "waiting"
	ConsultationStatusActive  ConsultationStatus = "active"
	ConsultationStatusEnded   ConsultationStatus = "ended"
)

// Consultation is a video session attached to an appointment.
type Consultation struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	PatientID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"doctor_id"`
	RoomName      string             `gorm:"type:varchar(255);not null" json:"room_name"`
	RoomURL       string             `gorm:"type:text;not null" json:"room_url"`
	Status        ConsultationStatus `gorm:"type:varchar(20);not null;default:'waiting';index" json:"status"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	EndedAt       *time.Time         `json:"ended_at,omitempty"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Consultation) IsParticipant(userID uuid.UUID) bool {
	return c.PatientID == userID || c.DoctorID == userID
}
