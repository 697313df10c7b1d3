package usecase

import (
	"context"
	"testing"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"
	repoimpl "mediconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVideo struct {
	rooms   int
	owners  []bool
	roomErr error
}

func (v *stubVideo) CreateRoom(ctx context.Context, name string) (*repository.VideoRoom, error) {
	v.rooms++
	if v.roomErr != nil {
		return nil, v.roomErr
	}
	return &repository.VideoRoom{Name: name, URL: "https://video.test/" + name}, nil
}

func (v *stubVideo) CreateMeetingToken(ctx context.Context, roomName, userName string, isOwner bool) (string, error) {
	v.owners = append(v.owners, isOwner)
	return "token-" + userName, nil
}

type consultationFixture struct {
	*appointmentFixture
	consultations ConsultationUsecase
	video         *stubVideo
}

func newConsultationFixture(t *testing.T) *consultationFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	profiles := repoimpl.NewProfileRepository()
	appointmentRepo := repoimpl.NewAppointmentRepository()
	ctx := context.Background()

	af := &appointmentFixture{publisher: &recordingPublisher{}, patient: uuid.New(), doctor: uuid.New()}
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: af.patient, FirstName: "Ana", Role: entity.RolePatient}))
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: af.doctor, FirstName: "Rui", Role: entity.RoleDoctor}))
	af.appointments = NewAppointmentUsecase(db, log, appointmentRepo, profiles, newAuditService(log), af.publisher)

	f := &consultationFixture{appointmentFixture: af, video: &stubVideo{}}
	f.consultations = NewConsultationUsecase(db, log, repoimpl.NewConsultationRepository(), appointmentRepo, profiles, f.video, af.publisher)
	return f
}

func (f *consultationFixture) confirmedAppointment(t *testing.T) uuid.UUID {
	t.Helper()
	booked := f.book(t)
	_, err := f.appointments.UpdateStatus(context.Background(), f.doctor, entity.RoleFlags{IsDoctor: true}, booked.ID,
		&dto.UpdateAppointmentStatusRequest{Status: "confirmed"})
	require.NoError(t, err)
	return booked.ID
}

func TestConsultation_StartRequiresConfirmedAppointment(t *testing.T) {
	f := newConsultationFixture(t)
	ctx := context.Background()

	pending := f.book(t)
	_, err := f.consultations.Start(ctx, f.doctor, &dto.StartConsultationRequest{AppointmentID: pending.ID})
	assert.ErrorIs(t, err, ErrAppointmentNotReady)

	_, err = f.consultations.Start(ctx, f.doctor, &dto.StartConsultationRequest{AppointmentID: uuid.New()})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	assert.Zero(t, f.video.rooms)
}

func TestConsultation_Lifecycle(t *testing.T) {
	f := newConsultationFixture(t)
	ctx := context.Background()
	appointmentID := f.confirmedAppointment(t)

	_, err := f.consultations.Start(ctx, f.patient, &dto.StartConsultationRequest{AppointmentID: appointmentID})
	assert.ErrorIs(t, err, ErrAppointmentForbidden)

	started, err := f.consultations.Start(ctx, f.doctor, &dto.StartConsultationRequest{AppointmentID: appointmentID})
	require.NoError(t, err)
	assert.Equal(t, "active", started.Status)
	assert.Equal(t, "https://video.test/consultation-"+appointmentID.String(), started.RoomURL)

	_, err = f.consultations.Start(ctx, f.doctor, &dto.StartConsultationRequest{AppointmentID: appointmentID})
	assert.ErrorIs(t, err, ErrConsultationExists)

	joined, err := f.consultations.Join(ctx, f.patient, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-Ana", joined.Token)

	_, err = f.consultations.Join(ctx, f.doctor, started.ID)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, f.video.owners)

	_, err = f.consultations.Join(ctx, uuid.New(), started.ID)
	assert.ErrorIs(t, err, ErrConsultationForbidden)

	_, err = f.consultations.End(ctx, f.patient, started.ID)
	assert.ErrorIs(t, err, ErrConsultationForbidden)

	ended, err := f.consultations.End(ctx, f.doctor, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "ended", ended.Status)
	assert.NotNil(t, ended.EndedAt)

	_, err = f.consultations.Join(ctx, f.patient, started.ID)
	assert.ErrorIs(t, err, ErrConsultationEnded)

	mine, err := f.consultations.ListMine(ctx, f.patient)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestConsultation_VideoFailureCreatesNoRow(t *testing.T) {
	f := newConsultationFixture(t)
	f.video.roomErr = errBackend
	appointmentID := f.confirmedAppointment(t)

	_, err := f.consultations.Start(context.Background(), f.doctor, &dto.StartConsultationRequest{AppointmentID: appointmentID})
	assert.ErrorIs(t, err, errBackend)

	mine, err := f.consultations.ListMine(context.Background(), f.doctor)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
