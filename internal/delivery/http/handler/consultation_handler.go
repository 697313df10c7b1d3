package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

// Start handles opening a video consultation for a confirmed appointment
// @Summary Start consultation (doctor)
// @Tags Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.StartConsultationRequest true "Start Consultation Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations [post]
func (h *ConsultationHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.StartConsultationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.Start(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to start consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation started successfully", consultation)
}

// Join handles issuing a meeting token to a participant
// @Summary Join consultation
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /consultations/{id}/join [post]
func (h *ConsultationHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "consultation")
	if !ok {
		return
	}

	join, err := h.consultationUsecase.Join(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, err, "Failed to join consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation joined successfully", join)
}

// End handles closing a consultation
// @Summary End consultation (doctor)
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Router /consultations/{id}/end [post]
func (h *ConsultationHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "consultation")
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.End(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, err, "Failed to end consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation ended successfully", consultation)
}

// ListMine handles listing the caller's consultations
// @Summary List my consultations
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /consultations [get]
func (h *ConsultationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	consultations, err := h.consultationUsecase.ListMine(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get consultations")
		return
	}

	response.Success(w, http.StatusOK, "Consultations retrieved successfully", consultations)
}

func (h *ConsultationHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrConsultationNotFound, usecase.ErrAppointmentNotFound:
		response.NotFound(w, err.Error())
	case usecase.ErrConsultationForbidden, usecase.ErrAppointmentForbidden:
		response.Forbidden(w, err.Error())
	case usecase.ErrConsultationExists, usecase.ErrAppointmentNotReady:
		response.Error(w, http.StatusConflict, err.Error(), nil)
	case usecase.ErrConsultationEnded:
		response.Error(w, http.StatusGone, err.Error(), nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
