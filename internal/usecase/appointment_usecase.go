package usecase

import (
	"context"
	"errors"
	"time"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrAppointmentForbidden     = errors.New("appointment does not belong to you")
	ErrAppointmentInPast        = errors.New("cannot book an appointment in the past")
	ErrAppointmentSelf          = errors.New("cannot book an appointment with yourself")
	ErrInvalidStatusTransition  = errors.New("invalid appointment status transition")
	ErrAppointmentStatusChanged = errors.New("appointment status changed concurrently")
)

// publishTimeout bounds realtime publishing after a commit.
const publishTimeout = 5 * time.Second

type AppointmentUsecase interface {
	Book(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, query *dto.AppointmentListQuery) ([]dto.AppointmentResponse, error)
	Get(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	profileRepo     repository.ProfileRepository
	auditService    service.AuditService
	publisher       repository.ChangePublisher
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
	publisher repository.ChangePublisher,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		profileRepo:     profileRepo,
		auditService:    auditService,
		publisher:       publisher,
	}
}

// Book creates a pending appointment.
//
// Flow:
// 1. Validate the doctor exists and is a doctor
// 2. Validate the time is in the future
// 3. Insert appointment + audit log in one transaction
// 4. Publish the change (non-fatal)
func (u *appointmentUsecase) Book(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if req.DoctorID == patientID {
		return nil, ErrAppointmentSelf
	}

	doctor, err := u.profileRepo.FindByID(ctx, u.db, req.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if !doctor.IsDoctor {
		return nil, ErrDoctorNotFound
	}

	if !req.ScheduledAt.After(time.Now()) {
		return nil, ErrAppointmentInPast
	}

	appointment := &entity.Appointment{
		PatientID:   patientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Status:      entity.AppointmentStatusPending,
		Reason:      req.Reason,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &patientID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publish(entity.ChangeInsert, appointment)

	// Reload with patient and doctor for the response
	full, err := u.appointmentRepo.FindByID(ctx, u.db, appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, at=%s", appointment.ID, appointment.DoctorID, appointment.ScheduledAt.Format(time.RFC3339))
	return converter.AppointmentToResponse(full), nil
}

// List returns the caller's appointments: as doctor for doctors, as patient otherwise.
func (u *appointmentUsecase) List(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, query *dto.AppointmentListQuery) ([]dto.AppointmentResponse, error) {
	filter := &entity.AppointmentFilter{
		Status: entity.AppointmentStatus(query.Status),
	}
	if flags.IsDoctor {
		filter.DoctorID = &userID
	} else {
		filter.PatientID = &userID
	}
	if query.Upcoming {
		now := time.Now().UTC()
		filter.From = &now
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s: %+v", userID, err)
		return nil, err
	}

	return converter.AppointmentsToResponses(appointments), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.find(ctx, userID, flags, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus applies a status transition.
// Doctors confirm and complete their appointments; either participant may cancel.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.find(ctx, userID, flags, id)
	if err != nil {
		return nil, err
	}

	next := entity.AppointmentStatus(req.Status)
	if next != entity.AppointmentStatusCancelled && appointment.DoctorID != userID {
		return nil, ErrAppointmentForbidden
	}
	if !appointment.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	updated, err := u.appointmentRepo.UpdateStatus(ctx, tx, id, appointment.Status, next, req.Notes)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, err
	}
	if updated == 0 {
		return nil, ErrAppointmentStatusChanged
	}

	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionAppointmentState, "appointment", id.String(),
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": next},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Status = next
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	u.publish(entity.ChangeUpdate, appointment)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) find(ctx context.Context, userID uuid.UUID, flags entity.RoleFlags, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsParticipant(userID) && !flags.IsAdmin {
		return nil, ErrAppointmentForbidden
	}
	return appointment, nil
}

func (u *appointmentUsecase) publish(changeType entity.ChangeType, appointment *entity.Appointment) {
	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "appointments",
		Type:     changeType,
		RecordID: appointment.ID.String(),
		Record:   converter.AppointmentToResponse(appointment),
		Audience: []uuid.UUID{appointment.PatientID, appointment.DoctorID},
	})
}

// publishChange sends a change event after a commit. Failures only cost
// subscribers a refresh, so they are logged and dropped.
func publishChange(log *logrus.Logger, publisher repository.ChangePublisher, event entity.ChangeEvent) {
	if publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warnf("Failed to publish %s change on %s (non-fatal): %+v", event.Type, event.Table, err)
	}
}
