package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediconnect/internal/domain/entity"
	"mediconnect/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSession struct {
	resolution usecase.Resolution
	calls      int
}

func (s *fixedSession) OnAuthEvent(ctx context.Context, event usecase.AuthEvent) {}

func (s *fixedSession) Resolve(ctx context.Context, identity *entity.Identity) usecase.Resolution {
	s.calls++
	return s.resolution
}

func (s *fixedSession) ResolveByID(ctx context.Context, userID uuid.UUID) usecase.Resolution {
	s.calls++
	return s.resolution
}

func gatedRequest(t *testing.T, session *fixedSession, gate func(http.Handler) http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, uuid.New()))
	rec := httptest.NewRecorder()
	gate(ok).ServeHTTP(rec, req)
	return rec
}

func TestRequireDoctor(t *testing.T) {
	tests := []struct {
		name       string
		resolution usecase.Resolution
		wantStatus int
	}{
		{
			name:       "doctor passes",
			resolution: usecase.Resolution{Status: usecase.ResolutionFound, Profile: &entity.Profile{Role: entity.RoleDoctor, IsDoctor: true}},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "repaired doctor passes",
			resolution: usecase.Resolution{Status: usecase.ResolutionRepaired, Profile: &entity.Profile{Role: entity.RoleDoctor, IsDoctor: true}},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "patient is redirected",
			resolution: usecase.Resolution{Status: usecase.ResolutionFound, Profile: &entity.Profile{Role: entity.RolePatient}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unavailable profile waits",
			resolution: usecase.Resolution{Status: usecase.ResolutionUnavailable},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fixedSession{resolution: tt.resolution}
			m := NewRoleMiddleware(session)

			rec := gatedRequest(t, session, m.RequireDoctor)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, 1, session.calls)
		})
	}
}

func TestRequireAdmin_ForbiddenCarriesRedirect(t *testing.T) {
	session := &fixedSession{resolution: usecase.Resolution{
		Status:  usecase.ResolutionFound,
		Profile: &entity.Profile{Role: entity.RoleDoctor, IsDoctor: true},
	}}
	m := NewRoleMiddleware(session)

	rec := gatedRequest(t, session, m.RequireAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			RedirectTo string `json:"redirect_to"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, DashboardPath, body.Error.RedirectTo)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	session := &fixedSession{resolution: usecase.Resolution{
		Status:  usecase.ResolutionProvisional,
		Profile: &entity.Profile{Role: entity.RoleAdmin},
	}}
	m := NewRoleMiddleware(session)

	rec := gatedRequest(t, session, m.RequireAdmin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestResolveSession_RequiresAuthentication(t *testing.T) {
	m := NewRoleMiddleware(&fixedSession{})
	rec := httptest.NewRecorder()

	m.RequireAdmin(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
