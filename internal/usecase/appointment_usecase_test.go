package usecase

import (
	"context"
	"testing"
	"time"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	repoimpl "mediconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appointmentFixture struct {
	appointments AppointmentUsecase
	publisher    *recordingPublisher
	patient      uuid.UUID
	doctor       uuid.UUID
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	profiles := repoimpl.NewProfileRepository()
	ctx := context.Background()

	f := &appointmentFixture{publisher: &recordingPublisher{}, patient: uuid.New(), doctor: uuid.New()}
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: f.patient, FirstName: "Ana", Role: entity.RolePatient}))
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: f.doctor, FirstName: "Rui", Role: entity.RoleDoctor, Specialty: "Cardiology"}))

	f.appointments = NewAppointmentUsecase(db, log, repoimpl.NewAppointmentRepository(), profiles, newAuditService(log), f.publisher)
	return f
}

func (f *appointmentFixture) book(t *testing.T) *dto.AppointmentResponse {
	t.Helper()
	res, err := f.appointments.Book(context.Background(), f.patient, &dto.CreateAppointmentRequest{
		DoctorID:    f.doctor,
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Reason:      "Chest pain",
	})
	require.NoError(t, err)
	return res
}

func TestAppointment_BookValidation(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()

	_, err := f.appointments.Book(ctx, f.patient, &dto.CreateAppointmentRequest{DoctorID: f.doctor, ScheduledAt: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrAppointmentInPast)

	_, err = f.appointments.Book(ctx, f.patient, &dto.CreateAppointmentRequest{DoctorID: f.patient, ScheduledAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrAppointmentSelf)

	_, err = f.appointments.Book(ctx, f.doctor, &dto.CreateAppointmentRequest{DoctorID: f.patient, ScheduledAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = f.appointments.Book(ctx, f.patient, &dto.CreateAppointmentRequest{DoctorID: uuid.New(), ScheduledAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	assert.Empty(t, f.publisher.tables())
}

func TestAppointment_LifecyclePublishesChanges(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	doctorFlags := entity.RoleFlags{IsDoctor: true}

	booked := f.book(t)
	assert.Equal(t, "pending", booked.Status)
	require.NotNil(t, booked.Doctor)

	_, err := f.appointments.UpdateStatus(ctx, f.patient, entity.RoleFlags{}, booked.ID, &dto.UpdateAppointmentStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrAppointmentForbidden)

	_, err = f.appointments.UpdateStatus(ctx, f.doctor, doctorFlags, booked.ID, &dto.UpdateAppointmentStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	confirmed, err := f.appointments.UpdateStatus(ctx, f.doctor, doctorFlags, booked.ID, &dto.UpdateAppointmentStatusRequest{Status: "confirmed", Notes: "Bring ECG"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "Bring ECG", confirmed.Notes)

	cancelled, err := f.appointments.UpdateStatus(ctx, f.patient, entity.RoleFlags{}, booked.ID, &dto.UpdateAppointmentStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	assert.Equal(t, []string{"appointments", "appointments", "appointments"}, f.publisher.tables())
}

func TestAppointment_ListAndAccess(t *testing.T) {
	f := newAppointmentFixture(t)
	ctx := context.Background()
	booked := f.book(t)

	mine, err := f.appointments.List(ctx, f.patient, entity.RoleFlags{}, &dto.AppointmentListQuery{Upcoming: true})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	forDoctor, err := f.appointments.List(ctx, f.doctor, entity.RoleFlags{IsDoctor: true}, &dto.AppointmentListQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, forDoctor, 1)

	_, err = f.appointments.Get(ctx, uuid.New(), entity.RoleFlags{}, booked.ID)
	assert.ErrorIs(t, err, ErrAppointmentForbidden)

	got, err := f.appointments.Get(ctx, uuid.New(), entity.RoleFlags{IsAdmin: true}, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, booked.ID, got.ID)

	_, err = f.appointments.Get(ctx, f.patient, entity.RoleFlags{}, uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
