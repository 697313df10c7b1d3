package middleware

import (
	"context"
	"net/http"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
)

const (
	resolutionKey contextKey = "session_resolution"

	// DashboardPath is where clients send users who hit a page their role
	// does not allow.
	DashboardPath = "/dashboard"
)

// RoleMiddleware gates routes on the caller's resolved profile.
// It must run after AuthMiddleware.Authenticate.
type RoleMiddleware struct {
	session usecase.SessionUsecase
}

func NewRoleMiddleware(session usecase.SessionUsecase) *RoleMiddleware {
	return &RoleMiddleware{session: session}
}

// ResolveSession resolves the caller's profile once and stores it in the
// request context for handlers that need the role flags.
func (m *RoleMiddleware) ResolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetResolutionFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "User not authenticated")
			return
		}

		resolution := m.session.ResolveByID(r.Context(), userID)
		ctx := context.WithValue(r.Context(), resolutionKey, resolution)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require admits the request only when allow accepts the caller's flags.
// While the profile cannot be resolved the caller gets 503 so clients keep
// showing a loading state instead of redirecting.
func (m *RoleMiddleware) Require(allow func(entity.RoleFlags) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.ResolveSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resolution, _ := GetResolutionFromContext(r.Context())

			if resolution.Status == usecase.ResolutionUnavailable {
				response.ServiceUnavailable(w, "Profile is still loading")
				return
			}

			if !allow(resolution.Flags()) {
				response.ForbiddenWithRedirect(w, "You don't have permission to access this resource", DashboardPath)
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func (m *RoleMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.Require(func(f entity.RoleFlags) bool { return f.IsAdmin })(next)
}

// RequireDoctor is a convenience middleware for doctor-only endpoints
func (m *RoleMiddleware) RequireDoctor(next http.Handler) http.Handler {
	return m.Require(func(f entity.RoleFlags) bool { return f.IsDoctor })(next)
}

// RequireAdminOrDoctor is a convenience middleware for admin or doctor endpoints
func (m *RoleMiddleware) RequireAdminOrDoctor(next http.Handler) http.Handler {
	return m.Require(func(f entity.RoleFlags) bool { return f.IsAdmin || f.IsDoctor })(next)
}

// GetResolutionFromContext returns the resolution stored by ResolveSession.
func GetResolutionFromContext(ctx context.Context) (usecase.Resolution, bool) {
	resolution, ok := ctx.Value(resolutionKey).(usecase.Resolution)
	return resolution, ok
}

// GetRoleFlagsFromContext returns the caller's role flags, or no privileges
// when the session was not resolved.
func GetRoleFlagsFromContext(ctx context.Context) entity.RoleFlags {
	resolution, _ := GetResolutionFromContext(ctx)
	return resolution.Flags()
}
