package server

import (
	"net/http"

	"github.com/laneview/laneview/internal/common"
)

// handleDashboard handles GET /dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	dashboard, err := s.app.Metrics.Dashboard(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build dashboard")
		WriteError(w, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	WriteJSON(w, http.StatusOK, dashboard)
}

// handleDashboardChart handles GET /dashboard/chart, returning a PNG.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	png, err := s.app.Metrics.SegmentRevenueChart(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "No revenue data available to chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
