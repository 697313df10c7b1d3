package repository

import (
	"context"
	"errors"

	"mediconnect/internal/domain/entity"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient").
		Preload("Doctor").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).Preload("Patient").Preload("Doctor")

	if filter != nil {
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.From != nil {
			query = query.Where("scheduled_at >= ?", *filter.From)
		}
	}

	if err := query.Order("scheduled_at ASC").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatus moves an appointment from one status to another. It returns
// 0 rows affected when the appointment is no longer in the from status.
// Empty notes leave the stored notes untouched.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, notes string) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if notes != "" {
		updates["notes"] = notes
	}

	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, db *gorm.DB) (map[entity.AppointmentStatus]int64, error) {
	var rows []struct {
		Status entity.AppointmentStatus
		Total  int64
	}
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// Consultation Repository

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error {
	return db.WithContext(ctx).Create(consultation).Error
}

func (r *consultationRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.WithContext(ctx).Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByAppointmentID(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByParticipant(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := db.WithContext(ctx).
		Where("patient_id = ? OR doctor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) Update(ctx context.Context, db *gorm.DB, consultation *entity.Consultation) error {
	return db.WithContext(ctx).Save(consultation).Error
}
