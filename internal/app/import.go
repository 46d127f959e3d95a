package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

type seedUsersFile struct {
	Users []seedUser `json:"users"`
}

type seedUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ImportUsersFromFile reads a users JSON file and imports accounts into storage.
// Existing users (by username) are skipped. Passwords are bcrypt-hashed and
// imported accounts are created verified, so seeded instances work without a
// mail provider. Returns (imported count, skipped count, error).
func ImportUsersFromFile(ctx context.Context, store interfaces.InternalStore, logger *common.Logger, filePath string) (int, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read users file %s: %w", filePath, err)
	}

	var file seedUsersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse users file %s: %w", filePath, err)
	}

	imported, skipped := 0, 0
	for _, u := range file.Users {
		if u.Username == "" || u.Email == "" || u.Password == "" {
			skipped++
			continue
		}
		// Skip if exists
		if _, err := store.GetUserByUsername(ctx, u.Username); err == nil {
			skipped++
			continue
		}
		passwordBytes := []byte(u.Password)
		if len(passwordBytes) > 72 {
			passwordBytes = passwordBytes[:72]
		}
		hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.DefaultCost)
		if err != nil {
			logger.Warn().Err(err).Str("username", u.Username).Msg("Failed to hash password during import")
			skipped++
			continue
		}
		now := time.Now()
		user := &models.InternalUser{
			UserID:       uuid.New().String(),
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: string(hash),
			IsActive:     true,
			IsVerified:   true,
			CreatedAt:    now,
			ModifiedAt:   now,
		}
		if err := store.SaveUser(ctx, user); err != nil {
			logger.Warn().Err(err).Str("username", u.Username).Msg("Failed to save user during import")
			skipped++
			continue
		}
		logger.Info().Str("username", u.Username).Msg("User imported")
		imported++
	}
	return imported, skipped, nil
}
