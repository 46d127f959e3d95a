package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/services/company"
)

// handleCompanies dispatches /companies by method.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleCompanyList(w, r)
	case http.MethodPost:
		s.handleCompanyCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeCompanies dispatches /companies/{id} and /companies/{id}/detail.
func (s *Server) routeCompanies(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/companies/")
	if path == "" {
		s.handleCompanies(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if len(parts) == 2 {
		if parts[1] == "detail" {
			s.handleCompanyDetail(w, r, id)
			return
		}
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	s.handleCompanyDelete(w, r, id)
}

func (s *Server) handleCompanyList(w http.ResponseWriter, r *http.Request) {
	userID := common.ResolveUserID(r.Context())
	companies, err := s.app.Companies.List(r.Context(), userID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list companies")
		WriteError(w, http.StatusInternalServerError, "Failed to list companies")
		return
	}
	out := make([]models.CompanyOut, 0, len(companies))
	for _, c := range companies {
		out = append(out, models.PublicCompany(c))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompanyCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Ticker  string `json:"ticker"`
		Segment string `json:"segment"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	created, err := s.app.Companies.Create(r.Context(), userID, req.Name, req.Ticker, req.Segment)
	if err != nil {
		var ve *company.ValidationError
		if errors.As(err, &ve) {
			WriteError(w, http.StatusUnprocessableEntity, ve.Message)
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create company")
		WriteError(w, http.StatusInternalServerError, "Failed to create company")
		return
	}

	WriteJSON(w, http.StatusCreated, models.PublicCompany(created))
}

func (s *Server) handleCompanyDelete(w http.ResponseWriter, r *http.Request, id string) {
	userID := common.ResolveUserID(r.Context())
	err := s.app.Companies.Delete(r.Context(), userID, id)
	if errors.Is(err, company.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete company")
		WriteError(w, http.StatusInternalServerError, "Failed to delete company")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompanyDetail(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	userID := common.ResolveUserID(r.Context())
	detail, err := s.app.Metrics.CompanyDetail(r.Context(), userID, id)
	if errors.Is(err, company.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Company not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build company detail")
		WriteError(w, http.StatusInternalServerError, "Failed to build company detail")
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}
