package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type AssistantHandler struct {
	assistantUsecase usecase.AssistantUsecase
	validator        *validator.CustomValidator
}

func NewAssistantHandler(assistantUsecase usecase.AssistantUsecase, validator *validator.CustomValidator) *AssistantHandler {
	return &AssistantHandler{
		assistantUsecase: assistantUsecase,
		validator:        validator,
	}
}

// Chat handles one turn of the health assistant conversation
// @Summary Chat with the assistant
// @Tags Assistant
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Chat Request"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	reply, err := h.assistantUsecase.Chat(r.Context(), userID, &req)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Assistant is unavailable, please try again", nil)
		return
	}

	response.Success(w, http.StatusOK, "Reply generated", reply)
}
