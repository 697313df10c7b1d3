package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
	}
}

// GetMyProfile handles getting the caller's profile
// @Summary Get my profile
// @Tags Profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profileUsecase.GetMine(r.Context(), userID)
	if err != nil {
		switch err {
		case usecase.ErrProfileUnavailable:
			response.ServiceUnavailable(w, "Profile is still loading")
		default:
			response.InternalServerError(w, "Failed to get profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", profile)
}

// UpdateMyProfile handles updating the caller's profile
// @Summary Update my profile
// @Description Role cannot be changed here. Practice fields are kept only for doctors.
// @Tags Profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Update Profile Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /profile [put]
func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.profileUsecase.UpdateMine(r.Context(), userID, &req)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

// ListDoctors handles the public doctor directory
// @Summary List doctors
// @Tags Doctors
// @Produce json
// @Param specialty query string false "Specialty filter (substring match)"
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *ProfileHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.profileUsecase.ListDoctors(r.Context(), &dto.DoctorListQuery{
		Specialty: r.URL.Query().Get("specialty"),
	})
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// AdminUpdateProfile handles editing any profile, role included
// @Summary Update a profile (admin)
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body dto.AdminUpdateProfileRequest true "Admin Update Profile Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/profiles/{id} [put]
func (h *ProfileHandler) AdminUpdateProfile(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profileID, ok := pathID(w, r, "id", "profile")
	if !ok {
		return
	}

	var req dto.AdminUpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.profileUsecase.AdminUpdate(r.Context(), adminID, profileID, &req)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

func (h *ProfileHandler) writeUpdateError(w http.ResponseWriter, err error) {
	switch err {
	case usecase.ErrProfileNotFound:
		response.NotFound(w, "Profile not found")
	case usecase.ErrInvalidDateFormat, usecase.ErrInvalidRole:
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	default:
		response.InternalServerError(w, "Failed to update profile")
	}
}
