package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason" validate:"omitempty,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}

// AppointmentListQuery is parsed from query parameters.
type AppointmentListQuery struct {
	Status   string `validate:"omitempty,oneof=pending confirmed cancelled completed"`
	Upcoming bool
}

// Response DTOs

type AppointmentResponse struct {
	ID          uuid.UUID        `json:"id"`
	PatientID   uuid.UUID        `json:"patient_id"`
	DoctorID    uuid.UUID        `json:"doctor_id"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Status      string           `json:"status"`
	Reason      string           `json:"reason,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Patient     *ProfileResponse `json:"patient,omitempty"`
	Doctor      *ProfileResponse `json:"doctor,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
