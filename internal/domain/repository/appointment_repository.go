package repository

import (
	"context"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, notes string) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (map[entity.AppointmentStatus]int64, error)
}

type ConsultationRepository interface {
	Create(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.Consultation, error)
	FindByParticipant(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]entity.Consultation, error)
	Update(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error
}
