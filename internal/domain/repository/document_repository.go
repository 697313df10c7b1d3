package repository

import (
	"context"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalDocumentRepository interface {
	Create(ctx context.Context, db *gorm.DB, doc *entity.MedicalDocument) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.MedicalDocument, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.MedicalDocument, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
