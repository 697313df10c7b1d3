package handler

import (
	"net/http"

	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
)

type AdminHandler struct {
	adminUsecase    usecase.AdminUsecase
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, auditLogUsecase usecase.AuditLogUsecase) *AdminHandler {
	return &AdminHandler{
		adminUsecase:    adminUsecase,
		auditLogUsecase: auditLogUsecase,
	}
}

// DashboardStats handles the admin dashboard counters
// @Summary Dashboard statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/stats [get]
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUsecase.DashboardStats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get dashboard stats")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetAllAuditLogs handles the audit trail
// @Summary List audit logs
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /admin/audit-logs [get]
func (h *AdminHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	auditLogs, total, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), page, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs, response.NewMeta(page, limit, total))
}
