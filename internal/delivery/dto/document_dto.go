package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateDocumentRequest is assembled by the handler from a multipart form.
type CreateDocumentRequest struct {
	Title    string     `validate:"required,max=255"`
	DoctorID *uuid.UUID `validate:"omitempty"`
	FileName string     `validate:"required"`
	FileSize int64      `validate:"gt=0"`
	File     io.Reader  `validate:"required"`
}

// Response DTOs

type DocumentResponse struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patient_id"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	Title     string     `json:"title"`
	FilePath  string     `json:"file_path"`
	FileType  string     `json:"file_type"`
	FileSize  int64      `json:"file_size"`
	CreatedAt time.Time  `json:"created_at"`
}
