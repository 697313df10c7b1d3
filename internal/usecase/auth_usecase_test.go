package usecase

import (
	"context"
	"testing"
	"time"

	"mediconnect/config"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	repoimpl "mediconnect/internal/repository"
	"mediconnect/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db      *gorm.DB
	auth    AuthUsecase
	session SessionUsecase
	tokens  *memTokenStore
	jwt     *jwt.JWTService
	events  *recordingListener
}

type recordingListener struct {
	events []AuthEventType
}

func (l *recordingListener) OnAuthEvent(ctx context.Context, event AuthEvent) {
	l.events = append(l.events, event.Type)
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	audit := newAuditService(log)
	userRepo := repoimpl.NewUserRepository()
	profileRepo := repoimpl.NewProfileRepository()

	session := NewSessionUsecase(db, log, userRepo, profileRepo, audit)
	tokens := newMemTokenStore()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	events := &recordingListener{}

	return &authFixture{
		db:      db,
		auth:    NewAuthUsecase(db, log, userRepo, profileRepo, audit, jwtService, tokens, session, events),
		session: session,
		tokens:  tokens,
		jwt:     jwtService,
		events:  events,
	}
}

func doctorSignUp() *dto.SignUpRequest {
	fee := decimal.RequireFromString("80")
	return &dto.SignUpRequest{
		Email:             "Doctor@Example.com",
		Password:          "s3cret!",
		FirstName:         "Meredith",
		LastName:          "Grey",
		Role:              "doctor",
		Specialty:         "General Surgery",
		YearsOfExperience: 12,
		ConsultationFee:   &fee,
		LicenseNumber:     "LIC-1234",
	}
}

func TestAuth_DoctorSignUpThenSignInIsGatedAsDoctor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	signUp, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)
	assert.Equal(t, "doctor@example.com", signUp.Identity.Email)

	var profile entity.Profile
	require.NoError(t, f.db.Where("id = ?", signUp.Identity.ID).First(&profile).Error)
	assert.Equal(t, entity.RoleDoctor, profile.Role)
	assert.True(t, profile.IsDoctor)
	assert.Equal(t, "General Surgery", profile.Specialty)

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "doctor@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, []AuthEventType{AuthEventSignedIn}, f.events.events)

	claims, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)

	flags := f.session.ResolveByID(ctx, claims.UserID).Flags()
	assert.Equal(t, entity.RoleFlags{IsDoctor: true, IsAdmin: false}, flags)
}

func TestAuth_SignUpRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)

	again := doctorSignUp()
	again.Email = "doctor@EXAMPLE.com"
	_, err = f.auth.SignUp(ctx, again)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Equal(t, int64(1), countRows(t, f.db, &entity.User{}))
}

func TestAuth_SignUpCannotSelfAssignAdmin(t *testing.T) {
	f := newAuthFixture(t)

	req := doctorSignUp()
	req.Role = "admin"
	_, err := f.auth.SignUp(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Zero(t, countRows(t, f.db, &entity.User{}))
}

func TestAuth_PatientSignUpDropsDoctorFields(t *testing.T) {
	f := newAuthFixture(t)

	req := doctorSignUp()
	req.Role = "patient"
	signUp, err := f.auth.SignUp(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "patient", signUp.Profile.Role)
	assert.False(t, signUp.Profile.IsDoctor)
	assert.Empty(t, signUp.Profile.Specialty)
}

func TestAuth_LoginWithWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "doctor@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.events.events)
}

func TestAuth_RefreshRotatesAndRevokesOldToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "doctor@example.com", Password: "s3cret!"})
	require.NoError(t, err)

	refreshed, err := f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, []AuthEventType{AuthEventSignedIn, AuthEventTokenRefreshed}, f.events.events)

	_, err = f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: refreshed.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_LogoutRevokesTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)

	tokens, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "doctor@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	access, err := f.jwt.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := f.jwt.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, access.UserID, access.TokenID, refresh.TokenID))

	exists, _ := f.tokens.Exists(ctx, jwt.TokenKey(jwt.AccessToken, access.UserID, access.TokenID))
	assert.False(t, exists)
	_, err = f.auth.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuth_LogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	signUp, err := f.auth.SignUp(ctx, doctorSignUp())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "doctor@example.com", Password: "s3cret!"})
		require.NoError(t, err)
	}
	require.Len(t, f.tokens.keys, 4)

	require.NoError(t, f.auth.LogoutAll(ctx, signUp.Identity.ID))
	assert.Empty(t, f.tokens.keys)
}
