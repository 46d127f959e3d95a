package app

import (
	"context"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
)

const schemaVersionKey = "laneview_schema_version"

// checkSchemaVersion compares the stored schema version against the code's
// SchemaVersion constant. On mismatch (or missing version), it purges cached
// market snapshots and stores the new version. Returns true if a purge occurred.
func checkSchemaVersion(ctx context.Context, sm interfaces.StorageManager, logger *common.Logger) bool {
	kv := sm.InternalStore()

	stored, err := kv.GetSystemKV(ctx, schemaVersionKey)
	if err == nil && stored == common.SchemaVersion {
		logger.Debug().
			Str("version", common.SchemaVersion).
			Msg("Schema version matches, no rebuild needed")
		return false
	}

	if err != nil || stored == "" {
		logger.Info().
			Str("current", common.SchemaVersion).
			Msg("Schema version not found, initializing (first run or pre-versioning)")
	} else {
		logger.Warn().
			Str("stored", stored).
			Str("current", common.SchemaVersion).
			Msg("Schema version mismatch, purging cached market snapshots")
	}

	count, purgeErr := sm.MarketDataStorage().PurgeSnapshots(ctx)
	if purgeErr != nil {
		logger.Error().Err(purgeErr).Msg("Failed to purge snapshots during schema migration")
		return false
	}

	logger.Info().
		Int("snapshots", count).
		Str("new_version", common.SchemaVersion).
		Msg("Schema migration complete, cached snapshots purged")

	if err := kv.SetSystemKV(ctx, schemaVersionKey, common.SchemaVersion); err != nil {
		logger.Error().Err(err).Msg("Failed to store new schema version")
	}

	return true
}
