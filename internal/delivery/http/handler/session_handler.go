package handler

import (
	"net/http"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/delivery/http/middleware"
	"mediconnect/pkg/response"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// GetSession returns the caller's resolved profile and navigation flags
// @Summary Resolve session
// @Description Status is found, repaired, provisional or unavailable. Clients show a loading state while unavailable.
// @Tags Session
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	resolution, ok := middleware.GetResolutionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	flags := resolution.Flags()
	response.Success(w, http.StatusOK, "Session resolved", dto.SessionResponse{
		Status:   string(resolution.Status),
		Profile:  converter.ProfileToResponse(resolution.Profile),
		IsAdmin:  flags.IsAdmin,
		IsDoctor: flags.IsDoctor,
	})
}
