package usecase

import (
	"context"
	"strings"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// ResolutionStatus tags how a session's profile was obtained.
type ResolutionStatus string

const (
	// ResolutionAnonymous means there is no identity.
	ResolutionAnonymous ResolutionStatus = "anonymous"
	// ResolutionFound means the profile row was read.
	ResolutionFound ResolutionStatus = "found"
	// ResolutionRepaired means the row was missing and has been rebuilt
	// from identity metadata and written back.
	ResolutionRepaired ResolutionStatus = "repaired"
	// ResolutionProvisional means the profile was rebuilt from metadata but
	// could be neither written nor read back; it lives only in this
	// resolution.
	ResolutionProvisional ResolutionStatus = "provisional"
	// ResolutionUnavailable means no profile could be read or rebuilt.
	ResolutionUnavailable ResolutionStatus = "unavailable"
)

// Resolution is the outcome of resolving the profile of an identity.
// Profile is nil for anonymous and unavailable.
type Resolution struct {
	Status  ResolutionStatus
	Profile *entity.Profile
}

func (r Resolution) Flags() entity.RoleFlags {
	return entity.RoleGate(r.Profile)
}

type SessionUsecase interface {
	AuthListener
	// Resolve never fails: backend errors are logged and degrade the status.
	Resolve(ctx context.Context, identity *entity.Identity) Resolution
	// ResolveByID loads the identity first.
	ResolveByID(ctx context.Context, userID uuid.UUID) Resolution
}

type sessionUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
}

func NewSessionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
) SessionUsecase {
	return &sessionUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		auditService: auditService,
	}
}

func (u *sessionUsecase) Resolve(ctx context.Context, identity *entity.Identity) Resolution {
	resolution := u.resolve(ctx, identity)
	service.ProfileResolutionsTotal.WithLabelValues(string(resolution.Status)).Inc()
	return resolution
}

func (u *sessionUsecase) resolve(ctx context.Context, identity *entity.Identity) Resolution {
	if identity == nil {
		return Resolution{Status: ResolutionAnonymous}
	}

	profile, err := u.profileRepo.FindByID(ctx, u.db, identity.ID)
	if err == nil && profile != nil {
		return Resolution{Status: ResolutionFound, Profile: profile}
	}
	// A missing row and a failed read are handled alike. The repair only
	// inserts, so a row hidden by a failed read is never overwritten.
	u.log.Warnf("Failed to find profile %s, rebuilding from metadata: %+v", identity.ID, err)

	provisional, ok := profileFromMetadata(identity)
	if !ok {
		u.log.Warnf("Identity %s has no usable role metadata, profile unavailable", identity.ID)
		return Resolution{Status: ResolutionUnavailable}
	}

	created, err := u.profileRepo.InsertIfAbsent(ctx, u.db, provisional)
	if err != nil {
		u.log.Warnf("Failed to repair profile %s, using provisional values: %+v", identity.ID, err)
		return Resolution{Status: ResolutionProvisional, Profile: provisional}
	}

	if created {
		if err := u.auditService.LogCreate(ctx, u.db, &identity.ID, entity.AuditActionProfileRepair, "profile", identity.ID.String(), provisional); err != nil {
			u.log.Warnf("Failed to audit profile repair %s: %+v", identity.ID, err)
		}
	}

	stored, err := u.profileRepo.FindByID(ctx, u.db, identity.ID)
	switch {
	case err == nil && stored != nil && created:
		return Resolution{Status: ResolutionRepaired, Profile: stored}
	case err == nil && stored != nil:
		// The row existed all along; only the first read failed.
		return Resolution{Status: ResolutionFound, Profile: stored}
	case created:
		u.log.Warnf("Repaired profile %s but failed to read it back: %+v", identity.ID, err)
		return Resolution{Status: ResolutionRepaired, Profile: provisional}
	default:
		u.log.Warnf("Profile %s exists but cannot be read, using provisional values: %+v", identity.ID, err)
		return Resolution{Status: ResolutionProvisional, Profile: provisional}
	}
}

func (u *sessionUsecase) ResolveByID(ctx context.Context, userID uuid.UUID) Resolution {
	identity := &entity.Identity{ID: userID}

	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	switch {
	case err != nil:
		// Without metadata a missing profile resolves as unavailable.
		u.log.Warnf("Failed to load identity %s: %+v", userID, err)
	case user == nil:
		return u.Resolve(ctx, nil)
	default:
		identity = user.Identity()
	}

	return u.Resolve(ctx, identity)
}

// OnAuthEvent re-resolves after sign in and token refresh so a missing
// profile row is repaired before the first gated request.
func (u *sessionUsecase) OnAuthEvent(ctx context.Context, event AuthEvent) {
	switch event.Type {
	case AuthEventSignedIn, AuthEventTokenRefreshed:
		resolution := u.Resolve(ctx, event.Identity)
		u.log.Debugf("Session %s resolved as %s after %s", event.Identity.ID, resolution.Status, event.Type)
	case AuthEventSignedOut:
		u.log.Debugf("Session %s signed out", event.Identity.ID)
	}
}

// profileFromMetadata builds a profile from the identity's sign-up metadata.
// It needs a known role and at least one name field.
func profileFromMetadata(identity *entity.Identity) (*entity.Profile, bool) {
	meta := identity.Metadata
	if meta == nil {
		return nil, false
	}

	role, ok := entity.ParseRole(strings.TrimSpace(cast.ToString(meta[entity.MetaRole])))
	if !ok {
		return nil, false
	}

	firstName := strings.TrimSpace(cast.ToString(meta[entity.MetaFirstName]))
	lastName := strings.TrimSpace(cast.ToString(meta[entity.MetaLastName]))
	if firstName == "" && lastName == "" {
		return nil, false
	}

	profile := &entity.Profile{
		ID:        identity.ID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     strings.TrimSpace(cast.ToString(meta[entity.MetaPhone])),
	}
	if languages, err := cast.ToStringSliceE(meta[entity.MetaLanguages]); err == nil {
		profile.Languages = languages
	}

	var variant entity.RoleVariant
	switch role {
	case entity.RoleAdmin:
		variant = entity.AdminRole{}
	case entity.RoleDoctor:
		fee, err := decimal.NewFromString(cast.ToString(meta[entity.MetaConsultationFee]))
		if err != nil {
			fee = decimal.Zero
		}
		variant = entity.DoctorRole{
			Specialty:         strings.TrimSpace(cast.ToString(meta[entity.MetaSpecialty])),
			YearsOfExperience: cast.ToInt(meta[entity.MetaYearsOfExperience]),
			ConsultationFee:   fee,
			LicenseNumber:     strings.TrimSpace(cast.ToString(meta[entity.MetaLicenseNumber])),
		}
	default:
		variant = entity.PatientRole{}
	}
	profile.SetVariant(variant)

	return profile, true
}
