package server

import (
	"errors"
	"net/http"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/services/analytics"
	"github.com/laneview/laneview/internal/services/company"
)

// handleSectorAnalytics handles GET /analytics/sector.
func (s *Server) handleSectorAnalytics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	text, err := s.app.Analytics.SectorCommentary(r.Context(), userID)
	if errors.Is(err, analytics.ErrUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, "analytics unavailable")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate sector commentary")
		WriteError(w, http.StatusInternalServerError, "Failed to generate sector commentary")
		return
	}
	WriteJSON(w, http.StatusOK, models.AnalyticsText{Text: text})
}

// handleCompanyAnalytics handles GET /analytics/company/{id}.
func (s *Server) handleCompanyAnalytics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/analytics/company/", "")
	if id == "" {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}

	userID := common.ResolveUserID(r.Context())
	text, err := s.app.Analytics.CompanyCommentary(r.Context(), userID, id)
	if errors.Is(err, company.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}
	if errors.Is(err, analytics.ErrUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, "analytics unavailable")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate company commentary")
		WriteError(w, http.StatusInternalServerError, "Failed to generate company commentary")
		return
	}
	WriteJSON(w, http.StatusOK, models.AnalyticsText{Text: text})
}
