// Factory for storage managers with pluggable backends.
package storage

import (
	"fmt"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendBadger  = "badger"
	BackendSurreal = "surreal"
)

// NewStorageManager creates a storage manager based on the configuration.
// Supported backends: "badger" (default, embedded) and "surreal".
func NewStorageManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = BackendBadger
	}

	switch backend {
	case BackendBadger:
		return NewManager(logger, config)

	case BackendSurreal:
		return surrealdb.NewManager(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surreal)", backend)
	}
}
