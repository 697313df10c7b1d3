package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartConsultationRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

type ConsultationResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	RoomName      string     `json:"room_name"`
	RoomURL       string     `json:"room_url"`
	Status        string     `json:"status"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

type JoinConsultationResponse struct {
	RoomURL string `json:"room_url"`
	Token   string `json:"token"`
}
