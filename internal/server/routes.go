package server

import (
	"net/http"

	"github.com/laneview/laneview/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/token", s.handleToken)
	mux.HandleFunc("/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("/reset-password", s.handleResetPassword)

	// Companies
	mux.HandleFunc("/companies", s.requireUser(s.handleCompanies))
	mux.HandleFunc("/companies/", s.requireUser(s.routeCompanies))

	// Dashboard
	mux.HandleFunc("/dashboard", s.requireUser(s.handleDashboard))
	mux.HandleFunc("/dashboard/chart", s.requireUser(s.handleDashboardChart))

	// Analytics
	mux.HandleFunc("/analytics/sector", s.requireUser(s.handleSectorAnalytics))
	mux.HandleFunc("/analytics/company/", s.requireUser(s.handleCompanyAnalytics))
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
