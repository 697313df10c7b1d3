package converter

import (
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Patient and Doctor are included when preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		DoctorID:    appointment.DoctorID,
		ScheduledAt: appointment.ScheduledAt,
		Status:      string(appointment.Status),
		Reason:      appointment.Reason,
		Notes:       appointment.Notes,
		Patient:     ProfileToResponse(appointment.Patient),
		Doctor:      ProfileToResponse(appointment.Doctor),
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

func ConsultationToResponse(c *entity.Consultation) *dto.ConsultationResponse {
	if c == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:            c.ID,
		AppointmentID: c.AppointmentID,
		PatientID:     c.PatientID,
		DoctorID:      c.DoctorID,
		RoomName:      c.RoomName,
		RoomURL:       c.RoomURL,
		Status:        string(c.Status),
		StartedAt:     c.StartedAt,
		EndedAt:       c.EndedAt,
	}
}

func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		responses[i] = *ConsultationToResponse(&consultations[i])
	}
	return responses
}
