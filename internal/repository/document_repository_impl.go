package repository

import (
	"context"
	"errors"

	"mediconnect/internal/domain/entity"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type medicalDocumentRepository struct{}

func NewMedicalDocumentRepository() domainRepo.MedicalDocumentRepository {
	return &medicalDocumentRepository{}
}

func (r *medicalDocumentRepository) Create(ctx context.Context, db *gorm.DB, doc *entity.MedicalDocument) error {
	return db.WithContext(ctx).Create(doc).Error
}

func (r *medicalDocumentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.MedicalDocument, error) {
	var doc entity.MedicalDocument
	err := db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *medicalDocumentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.MedicalDocument, error) {
	var docs []entity.MedicalDocument
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *medicalDocumentRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&entity.MedicalDocument{}).Error
}

func (r *medicalDocumentRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&entity.MedicalDocument{}).Count(&total).Error
	return total, err
}
