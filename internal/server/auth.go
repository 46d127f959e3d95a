package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/laneview/laneview/internal/common"
)

// Email token types. The type claim keeps a verification token from being
// replayed as a reset token and vice versa.
const (
	tokenTypeVerifyEmail   = "verify_email"
	tokenTypeResetPassword = "reset_password"
)

// --- JWT helpers ---

// signAccessToken creates a signed HMAC-SHA256 access token for a username.
func signAccessToken(username string, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iss": "laneview-server",
		"iat": now.Unix(),
		"exp": now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// signEmailToken creates a short-lived typed token carried in email links.
func signEmailToken(email, tokenType string, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"type": tokenType,
		"iss":  "laneview-server",
		"iat":  now.Unix(),
		"exp":  now.Add(config.GetEmailTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// parseEmailToken validates an email token and returns the subject email.
// Tokens of the wrong type are rejected.
func parseEmailToken(tokenString, wantType string, config *common.AuthConfig) (string, error) {
	_, claims, err := validateJWT(tokenString, []byte(config.JWTSecret))
	if err != nil {
		return "", err
	}
	if typ, _ := claims["type"].(string); typ != wantType {
		return "", fmt.Errorf("unexpected token type")
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return email, nil
}

// --- Password helpers ---

// hashPassword hashes a password with bcrypt. Inputs beyond bcrypt's
// 72-byte limit are truncated rather than rejected.
func hashPassword(password string) (string, error) {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword verifies a password against its bcrypt hash.
func checkPassword(hash, password string) bool {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}

// --- Request guard ---

// writeCredentialsError writes the standard 401 for missing/invalid tokens.
func writeCredentialsError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteError(w, http.StatusUnauthorized, "Could not validate credentials (token).")
}

// requireUser wraps a handler with the Bearer-token guard. The resolved
// user is attached to the request context for handlers to read via
// common.ResolveUserID. 401 covers missing, invalid and expired tokens as
// well as unknown users; deactivated accounts get 400 and unverified
// accounts 403, which the terminal client relies on to force a logout.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeCredentialsError(w)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		_, claims, err := validateJWT(tokenString, []byte(s.app.Config.Auth.JWTSecret))
		if err != nil {
			writeCredentialsError(w)
			return
		}

		username, _ := claims["sub"].(string)
		if username == "" {
			writeCredentialsError(w)
			return
		}

		user, err := s.app.Storage.InternalStore().GetUserByUsername(r.Context(), username)
		if err != nil {
			writeCredentialsError(w)
			return
		}

		if !user.IsActive {
			WriteError(w, http.StatusBadRequest, "Inactive user")
			return
		}
		if !user.IsVerified {
			WriteError(w, http.StatusForbidden, "Email not verified. Please check your inbox.")
			return
		}

		uc := &common.UserContext{
			UserID:   user.UserID,
			Username: user.Username,
			Email:    user.Email,
		}
		next(w, r.WithContext(common.WithUserContext(r.Context(), uc)))
	}
}
