package web

import (
	"net/http"

	"yourkitchen/internal/metrics"
)

const defaultUsageDays = 7

type adminMetricsResponse struct {
	Usage  []metrics.DailyUsage `json:"usage"`
	System metrics.SysHealth    `json:"system"`
}

func (s *Server) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if !s.isAdmin(userFrom(r.Context())) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	resp := adminMetricsResponse{
		Usage:  []metrics.DailyUsage{},
		System: metrics.GetSysHealth(s.opts.DataDir),
	}
	if s.usage != nil {
		days := intQuery(r, "days", defaultUsageDays)
		if days <= 0 {
			days = defaultUsageDays
		}
		usage, err := s.usage.GetDailyUsage(r.Context(), days)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if usage != nil {
			resp.Usage = usage
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
