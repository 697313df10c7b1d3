package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileUnavailable = errors.New("profile is not available yet")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)

type ProfileUsecase interface {
	GetMine(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	ListDoctors(ctx context.Context, query *dto.DoctorListQuery) ([]dto.ProfileResponse, error)
	// AdminUpdate edits any profile, role included.
	AdminUpdate(ctx context.Context, adminID, profileID uuid.UUID, req *dto.AdminUpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	profileRepo  repository.ProfileRepository
	session      SessionUsecase
	auditService service.AuditService
}

func NewProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	profileRepo repository.ProfileRepository,
	session SessionUsecase,
	auditService service.AuditService,
) ProfileUsecase {
	return &profileUsecase{
		db:           db,
		log:          log,
		profileRepo:  profileRepo,
		session:      session,
		auditService: auditService,
	}
}

// GetMine goes through session resolution so a missing row is repaired.
func (u *profileUsecase) GetMine(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	resolution := u.session.ResolveByID(ctx, userID)
	if resolution.Profile == nil {
		return nil, ErrProfileUnavailable
	}
	return converter.ProfileToResponse(resolution.Profile), nil
}

func (u *profileUsecase) UpdateMine(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	return u.update(ctx, userID, userID, entity.AuditActionProfileUpdate, func(profile *entity.Profile) error {
		return applyProfileFields(profile, profile.Role, req)
	})
}

func (u *profileUsecase) AdminUpdate(ctx context.Context, adminID, profileID uuid.UUID, req *dto.AdminUpdateProfileRequest) (*dto.ProfileResponse, error) {
	role, ok := entity.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	return u.update(ctx, adminID, profileID, entity.AuditActionProfileUpdate, func(profile *entity.Profile) error {
		return applyProfileFields(profile, role, &req.UpdateProfileRequest)
	})
}

func (u *profileUsecase) update(ctx context.Context, actorID, profileID uuid.UUID, action string, apply func(*entity.Profile) error) (*dto.ProfileResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.profileRepo.FindByID(ctx, tx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		u.log.Warnf("Failed to find profile %s: %+v", profileID, err)
		return nil, err
	}

	// Capture old value for audit
	oldValue := converter.ProfileToResponse(profile)

	if err := apply(profile); err != nil {
		return nil, err
	}

	if err := u.profileRepo.Update(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to update profile %s: %+v", profileID, err)
		return nil, err
	}

	newValue := converter.ProfileToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, tx, &actorID, action, "profile", profileID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

func (u *profileUsecase) ListDoctors(ctx context.Context, query *dto.DoctorListQuery) ([]dto.ProfileResponse, error) {
	doctors, err := u.profileRepo.FindAll(ctx, u.db, &entity.ProfileFilter{
		Role:      entity.RoleDoctor,
		Specialty: strings.TrimSpace(query.Specialty),
	})
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}
	return converter.ProfilesToResponses(doctors), nil
}

// applyProfileFields copies the editable fields and sets the role variant.
// Practice fields only survive on doctors.
func applyProfileFields(profile *entity.Profile, role entity.Role, req *dto.UpdateProfileRequest) error {
	profile.FirstName = strings.TrimSpace(req.FirstName)
	profile.LastName = strings.TrimSpace(req.LastName)
	profile.Bio = req.Bio
	profile.Address = req.Address
	profile.Phone = req.Phone
	profile.Languages = req.Languages

	profile.DateOfBirth = nil
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return ErrInvalidDateFormat
		}
		profile.DateOfBirth = &dob
	}

	switch role {
	case entity.RoleDoctor:
		fee := decimal.Zero
		if req.ConsultationFee != nil {
			fee = *req.ConsultationFee
		}
		profile.SetVariant(entity.DoctorRole{
			Specialty:         strings.TrimSpace(req.Specialty),
			YearsOfExperience: req.YearsOfExperience,
			ConsultationFee:   fee,
			LicenseNumber:     strings.TrimSpace(req.LicenseNumber),
		})
	case entity.RoleAdmin:
		profile.SetVariant(entity.AdminRole{})
	default:
		profile.SetVariant(entity.PatientRole{})
	}
	return nil
}
