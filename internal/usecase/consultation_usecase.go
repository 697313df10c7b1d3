package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound  = errors.New("consultation not found")
	ErrConsultationForbidden = errors.New("not a participant of this consultation")
	ErrConsultationExists    = errors.New("consultation already started for this appointment")
	ErrConsultationEnded     = errors.New("consultation has ended")
	ErrAppointmentNotReady   = errors.New("appointment must be confirmed before starting a consultation")
)

type ConsultationUsecase interface {
	Start(ctx context.Context, doctorID uuid.UUID, req *dto.StartConsultationRequest) (*dto.ConsultationResponse, error)
	Join(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.JoinConsultationResponse, error)
	End(ctx context.Context, doctorID uuid.UUID, id uuid.UUID) (*dto.ConsultationResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	appointmentRepo  repository.AppointmentRepository
	profileRepo      repository.ProfileRepository
	video            repository.VideoProvider
	publisher        repository.ChangePublisher
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	appointmentRepo repository.AppointmentRepository,
	profileRepo repository.ProfileRepository,
	video repository.VideoProvider,
	publisher repository.ChangePublisher,
) ConsultationUsecase {
	return &consultationUsecase{
		db:               db,
		log:              log,
		consultationRepo: consultationRepo,
		appointmentRepo:  appointmentRepo,
		profileRepo:      profileRepo,
		video:            video,
		publisher:        publisher,
	}
}

// Start opens a video room for a confirmed appointment of the doctor.
func (u *consultationUsecase) Start(ctx context.Context, doctorID uuid.UUID, req *dto.StartConsultationRequest) (*dto.ConsultationResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrAppointmentForbidden
	}
	if appointment.Status != entity.AppointmentStatusConfirmed {
		return nil, ErrAppointmentNotReady
	}

	existing, err := u.consultationRepo.FindByAppointmentID(ctx, u.db, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to check existing consultation: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrConsultationExists
	}

	room, err := u.video.CreateRoom(ctx, fmt.Sprintf("consultation-%s", appointment.ID))
	if err != nil {
		u.log.Warnf("Failed to create video room for appointment %s: %+v", appointment.ID, err)
		return nil, err
	}

	now := time.Now().UTC()
	consultation := &entity.Consultation{
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		DoctorID:      appointment.DoctorID,
		RoomName:      room.Name,
		RoomURL:       room.URL,
		Status:        entity.ConsultationStatusActive,
		StartedAt:     &now,
	}

	if err := u.consultationRepo.Create(ctx, u.db, consultation); err != nil {
		if isDuplicateKeyError(err, "appointment") {
			return nil, ErrConsultationExists
		}
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	u.publish(entity.ChangeInsert, consultation)

	return converter.ConsultationToResponse(consultation), nil
}

// Join returns a meeting token for a participant. The doctor joins as owner.
func (u *consultationUsecase) Join(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*dto.JoinConsultationResponse, error) {
	consultation, err := u.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if consultation.Status == entity.ConsultationStatusEnded {
		return nil, ErrConsultationEnded
	}

	userName := userID.String()
	if profile, err := u.profileRepo.FindByID(ctx, u.db, userID); err == nil && profile.FullName() != "" {
		userName = profile.FullName()
	}

	token, err := u.video.CreateMeetingToken(ctx, consultation.RoomName, userName, consultation.DoctorID == userID)
	if err != nil {
		u.log.Warnf("Failed to create meeting token for %s: %+v", consultation.RoomName, err)
		return nil, err
	}

	return &dto.JoinConsultationResponse{
		RoomURL: consultation.RoomURL,
		Token:   token,
	}, nil
}

func (u *consultationUsecase) End(ctx context.Context, doctorID uuid.UUID, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.find(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	if consultation.DoctorID != doctorID {
		return nil, ErrConsultationForbidden
	}
	if consultation.Status == entity.ConsultationStatusEnded {
		return nil, ErrConsultationEnded
	}

	now := time.Now().UTC()
	consultation.Status = entity.ConsultationStatusEnded
	consultation.EndedAt = &now

	if err := u.consultationRepo.Update(ctx, u.db, consultation); err != nil {
		u.log.Warnf("Failed to end consultation %s: %+v", id, err)
		return nil, err
	}

	u.publish(entity.ChangeUpdate, consultation)

	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) ListMine(ctx context.Context, userID uuid.UUID) ([]dto.ConsultationResponse, error) {
	consultations, err := u.consultationRepo.FindByParticipant(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to list consultations for %s: %+v", userID, err)
		return nil, err
	}
	return converter.ConsultationsToResponses(consultations), nil
}

func (u *consultationUsecase) find(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*entity.Consultation, error) {
	consultation, err := u.consultationRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", id, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	if !consultation.IsParticipant(userID) {
		return nil, ErrConsultationForbidden
	}
	return consultation, nil
}

func (u *consultationUsecase) publish(changeType entity.ChangeType, consultation *entity.Consultation) {
	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "consultations",
		Type:     changeType,
		RecordID: consultation.ID.String(),
		Record:   converter.ConsultationToResponse(consultation),
		Audience: []uuid.UUID{consultation.PatientID, consultation.DoctorID},
	})
}
