// Package marketfs implements file-based storage for cached market data
// snapshots. One JSON file per ticker, written atomically.
package marketfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/models"
)

// Store provides file-based JSON storage for market data snapshots.
type Store struct {
	basePath     string
	snapshotsDir string
	logger       *common.Logger
}

// NewMarketStore creates a new market file store.
func NewMarketStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create market store path %s: %w", path, err)
	}
	snapshotsDir := filepath.Join(path, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots path %s: %w", snapshotsDir, err)
	}

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		basePath:     path,
		snapshotsDir: snapshotsDir,
		logger:       logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// GetSnapshot loads a cached snapshot for a ticker.
func (s *Store) GetSnapshot(_ context.Context, ticker string) (*models.MarketSnapshot, error) {
	var snap models.MarketSnapshot
	if err := readJSON(s.snapshotsDir, ticker, &snap); err != nil {
		return nil, fmt.Errorf("market data for '%s' not found", ticker)
	}
	return &snap, nil
}

// SaveSnapshot writes a snapshot atomically.
func (s *Store) SaveSnapshot(_ context.Context, snap *models.MarketSnapshot) error {
	if err := writeJSON(s.snapshotsDir, snap.Ticker, snap); err != nil {
		return fmt.Errorf("failed to save market data: %w", err)
	}
	s.logger.Debug().Str("ticker", snap.Ticker).Msg("Market snapshot saved")
	return nil
}

// WriteRaw writes arbitrary binary data to a subdirectory atomically.
// Used for rendered chart images.
func (s *Store) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(key))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// PurgeSnapshots removes all cached snapshot files and returns the count.
func (s *Store) PurgeSnapshots(_ context.Context) (int, error) {
	keys, err := listKeys(s.snapshotsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list market data: %w", err)
	}
	count := 0
	for _, key := range keys {
		deleteJSON(s.snapshotsDir, key)
		count++
	}
	return count, nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filePath(dir, key)
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

func deleteJSON(dir, key string) {
	os.Remove(filePath(dir, key))
}
