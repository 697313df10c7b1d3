package usecase

import (
	"context"
	"errors"
	"strings"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	"mediconnect/internal/service"
	"mediconnect/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidRole        = errors.New("role must be patient or doctor")
)

type AuthEventType string

const (
	AuthEventSignedIn       AuthEventType = "signed_in"
	AuthEventSignedOut      AuthEventType = "signed_out"
	AuthEventTokenRefreshed AuthEventType = "token_refreshed"
)

// AuthEvent is published to listeners after every identity change.
type AuthEvent struct {
	Type     AuthEventType
	Identity *entity.Identity
}

type AuthListener interface {
	OnAuthEvent(ctx context.Context, event AuthEvent)
}

type AuthUsecase interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.IdentityResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	profileRepo  repository.ProfileRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	tokenStore   repository.TokenStore
	listeners    []AuthListener
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore repository.TokenStore,
	listeners ...AuthListener,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		auditService: auditService,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		listeners:    listeners,
	}
}

// SignUp writes the identity with its role and name metadata and the
// matching profile in one transaction.
func (u *authUsecase) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	role, ok := entity.ParseRole(req.Role)
	if !ok || role == entity.RoleAdmin {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashedPassword),
		Metadata: signUpMetadata(req, role),
		IsActive: true,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	profile, ok := profileFromMetadata(user.Identity())
	if !ok {
		return nil, ErrInvalidRole
	}

	if err := u.profileRepo.Upsert(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to create profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  role,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.SignUpResponse{
		Identity: converter.IdentityToResponse(user),
		Profile:  converter.ProfileToResponse(profile),
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Find user by email (read-only, no transaction needed)
	user, err := u.userRepo.FindByEmail(ctx, u.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, u.db, &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil); err != nil {
		u.log.Warnf("Failed to audit login for user %s: %+v", user.ID, err)
	}

	u.publish(ctx, AuthEvent{Type: AuthEventSignedIn, Identity: user.Identity()})

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	keys := []string{jwt.TokenKey(jwt.AccessToken, userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, jwt.TokenKey(jwt.RefreshToken, userID, refreshTokenID))
	}

	if err := u.tokenStore.Delete(ctx, keys...); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogCreate(ctx, u.db, &userID, entity.AuditActionUserLogout, "user", userID.String(), nil); err != nil {
		u.log.Warnf("Failed to audit logout for user %s: %+v", userID, err)
	}

	u.publish(ctx, AuthEvent{Type: AuthEventSignedOut, Identity: &entity.Identity{ID: userID}})

	return nil
}

// LogoutAll revokes every token of the user.
func (u *authUsecase) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		if err := u.tokenStore.DeleteMatching(ctx, jwt.TokenPattern(tokenType, &userID, "")); err != nil {
			u.log.Warnf("Failed to revoke %s tokens: %+v", tokenType, err)
			return err
		}
	}

	u.publish(ctx, AuthEvent{Type: AuthEventSignedOut, Identity: &entity.Identity{ID: userID}})

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := jwt.TokenKey(jwt.RefreshToken, claims.UserID, claims.TokenID)
	exists, err := u.tokenStore.Exists(ctx, refreshKey)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Delete old refresh token
	if err := u.tokenStore.Delete(ctx, refreshKey); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	identity := &entity.Identity{ID: claims.UserID, Email: claims.Email}
	if user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID); err != nil {
		u.log.Warnf("Failed to load identity %s after refresh: %+v", claims.UserID, err)
	} else if user != nil {
		identity = user.Identity()
	}
	u.publish(ctx, AuthEvent{Type: AuthEventTokenRefreshed, Identity: identity})

	return tokens, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.IdentityResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	response := converter.IdentityToResponse(user)
	return &response, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string) (*dto.TokenResponse, error) {
	access, err := u.jwtService.GenerateAccessToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refresh, err := u.jwtService.GenerateRefreshToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, jwt.TokenKey(jwt.AccessToken, userID, access.ID), u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, jwt.TokenKey(jwt.RefreshToken, userID, refresh.ID), u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  access.Signed,
		RefreshToken: refresh.Signed,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) publish(ctx context.Context, event AuthEvent) {
	for _, listener := range u.listeners {
		listener.OnAuthEvent(ctx, event)
	}
}

func signUpMetadata(req *dto.SignUpRequest, role entity.Role) entity.JSON {
	meta := entity.JSON{
		entity.MetaFirstName: strings.TrimSpace(req.FirstName),
		entity.MetaLastName:  strings.TrimSpace(req.LastName),
		entity.MetaRole:      role.String(),
	}
	if req.Phone != "" {
		meta[entity.MetaPhone] = req.Phone
	}
	if len(req.Languages) > 0 {
		meta[entity.MetaLanguages] = req.Languages
	}
	if role == entity.RoleDoctor {
		meta[entity.MetaSpecialty] = req.Specialty
		meta[entity.MetaYearsOfExperience] = req.YearsOfExperience
		meta[entity.MetaLicenseNumber] = req.LicenseNumber
		if req.ConsultationFee != nil {
			meta[entity.MetaConsultationFee] = req.ConsultationFee.String()
		}
	}
	return meta
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
