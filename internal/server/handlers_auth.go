package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laneview/laneview/internal/models"
)

// handleRegister handles POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusUnprocessableEntity, "username, email and password are required")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	if _, err := store.GetUserByUsername(ctx, req.Username); err == nil {
		WriteError(w, http.StatusBadRequest, "Username already registered")
		return
	}
	if _, err := store.GetUserByEmail(ctx, req.Email); err == nil {
		WriteError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	now := time.Now()
	user := &models.InternalUser{
		UserID:       uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	// Email failure must not fail registration; the account can still be
	// verified through a re-sent link.
	s.sendVerificationEmail(ctx, user)

	s.logger.Info().Str("username", user.Username).Msg("User registered")
	WriteJSON(w, http.StatusCreated, models.PublicUser(user))
}

// sendVerificationEmail signs a verification token and mails the link.
func (s *Server) sendVerificationEmail(ctx context.Context, user *models.InternalUser) {
	token, err := signEmailToken(user.Email, tokenTypeVerifyEmail, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign verification token")
		return
	}
	link := fmt.Sprintf("%s/verify-email?verify_token=%s",
		strings.TrimRight(s.app.Config.Server.ExternalURL, "/"), url.QueryEscape(token))
	if err := s.app.Mailer.SendVerificationEmail(ctx, user.Email, link); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
	}
}

// handleToken handles POST /token (URL-encoded login form).
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		// Allow logging in with the email address in the username field.
		user, err = store.GetUserByEmail(ctx, username)
	}
	if err != nil || !checkPassword(user.PasswordHash, password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := signAccessToken(user.Username, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign access token")
		WriteError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleVerifyEmail handles GET /verify-email?token=...
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, http.StatusBadRequest, "Verification token is required")
		return
	}

	email, err := parseEmailToken(token, tokenTypeVerifyEmail, &s.app.Config.Auth)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid or expired verification link.")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid or expired verification link.")
		return
	}

	if !user.IsVerified {
		user.IsVerified = true
		user.ModifiedAt = time.Now()
		if err := store.SaveUser(ctx, user); err != nil {
			s.logger.Error().Err(err).Msg("Failed to save user")
			WriteError(w, http.StatusInternalServerError, "Failed to verify email")
			return
		}
		s.logger.Info().Str("username", user.Username).Msg("Email verified")
	}

	WriteJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Email verified successfully. You can now log in.",
	})
}

// handleForgotPassword handles POST /forgot-password. The response never
// reveals whether the email belongs to an account.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	if user, err := store.GetUserByEmail(ctx, strings.TrimSpace(req.Email)); err == nil {
		token, err := signEmailToken(user.Email, tokenTypeResetPassword, &s.app.Config.Auth)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to sign reset token")
		} else {
			link := fmt.Sprintf("%s/reset-password?reset_token=%s",
				strings.TrimRight(s.app.Config.Server.ExternalURL, "/"), url.QueryEscape(token))
			if err := s.app.Mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
				s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send reset email")
			}
		}
	}

	WriteJSON(w, http.StatusOK, models.MessageResponse{
		Message: "If that email is registered, a reset link has been sent.",
	})
}

// handleResetPassword handles POST /reset-password.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if req.NewPassword == "" {
		WriteError(w, http.StatusUnprocessableEntity, "new_password is required")
		return
	}

	email, err := parseEmailToken(req.Token, tokenTypeResetPassword, &s.app.Config.Auth)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid or expired reset link.")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid or expired reset link.")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	user.PasswordHash = hash
	user.ModifiedAt = time.Now()
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	s.logger.Info().Str("username", user.Username).Msg("Password reset")
	WriteJSON(w, http.StatusOK, models.MessageResponse{
		Message: "Password has been reset successfully. You can now log in.",
	})
}
