package converter

import (
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
)

// ProfileToResponse converts a Profile entity to ProfileResponse DTO.
// Practice fields are only filled for doctors.
func ProfileToResponse(profile *entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	response := &dto.ProfileResponse{
		ID:        profile.ID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		FullName:  profile.FullName(),
		Role:      profile.Role.String(),
		IsDoctor:  profile.IsDoctor,
		Bio:       profile.Bio,
		Languages: profile.Languages,
		Address:   profile.Address,
		Phone:     profile.Phone,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}

	if profile.DateOfBirth != nil {
		response.DateOfBirth = profile.DateOfBirth.Format("2006-01-02")
	}

	if doctor, ok := profile.Variant().(entity.DoctorRole); ok {
		fee := doctor.ConsultationFee
		response.Specialty = doctor.Specialty
		response.YearsOfExperience = doctor.YearsOfExperience
		response.ConsultationFee = &fee
		response.LicenseNumber = doctor.LicenseNumber
	}

	return response
}

func ProfilesToResponses(profiles []entity.Profile) []dto.ProfileResponse {
	responses := make([]dto.ProfileResponse, len(profiles))
	for i := range profiles {
		responses[i] = *ProfileToResponse(&profiles[i])
	}
	return responses
}

func ProfileToAuthor(profile *entity.Profile) *dto.AuthorResponse {
	if profile == nil {
		return nil
	}
	return &dto.AuthorResponse{
		ID:       profile.ID,
		FullName: profile.FullName(),
		Role:     profile.Role.String(),
	}
}

func IdentityToResponse(user *entity.User) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:        user.ID,
		Email:     user.Email,
		Metadata:  user.Metadata,
		CreatedAt: user.CreatedAt,
	}
}
