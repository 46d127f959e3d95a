// Package interfaces defines service contracts for LaneView
package interfaces

import (
	"context"

	"github.com/laneview/laneview/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore
	MarketDataStorage() MarketDataStorage

	// DataPath returns the base data directory path.
	DataPath() string

	// WriteRaw writes arbitrary binary data to a subdirectory atomically.
	// Used for rendered chart images.
	WriteRaw(subdir, key string, data []byte) error

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts, per-user config, and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByUsername(ctx context.Context, username string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error
	DeleteUserKV(ctx context.Context, userID, key string) error

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// UserDataStore manages all user domain data via generic records.
type UserDataStore interface {
	Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error)
	Put(ctx context.Context, record *models.UserRecord) error
	Delete(ctx context.Context, userID, subject, key string) error
	List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error)
	Close() error
}

// MarketDataStorage caches market snapshots per ticker.
type MarketDataStorage interface {
	GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.MarketSnapshot) error

	// PurgeSnapshots removes all cached snapshots, returning the count removed.
	PurgeSnapshots(ctx context.Context) (int, error)
}
