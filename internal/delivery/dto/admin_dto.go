package dto

type DashboardStatsResponse struct {
	ProfilesByRole       map[string]int64 `json:"profiles_by_role"`
	AppointmentsByStatus map[string]int64 `json:"appointments_by_status"`
	Documents            int64            `json:"documents"`
	Posts                int64            `json:"posts"`
	Products             int64            `json:"products"`
}
