package company

import (
	"context"
	"fmt"
	"time"

	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
)

// mockUserDataStore is a map-backed UserDataStore mirroring the real
// store's version/DateTime behavior.
type mockUserDataStore struct {
	data map[string]*models.UserRecord // keyed by "userID:subject:key"
}

func newMockUserDataStore() *mockUserDataStore {
	return &mockUserDataStore{data: make(map[string]*models.UserRecord)}
}

func (m *mockUserDataStore) compositeKey(userID, subject, key string) string {
	return userID + ":" + subject + ":" + key
}

func (m *mockUserDataStore) Get(_ context.Context, userID, subject, key string) (*models.UserRecord, error) {
	rec, ok := m.data[m.compositeKey(userID, subject, key)]
	if !ok {
		return nil, fmt.Errorf("%s '%s' not found for user '%s'", subject, key, userID)
	}
	return rec, nil
}

func (m *mockUserDataStore) Put(_ context.Context, record *models.UserRecord) error {
	ck := m.compositeKey(record.UserID, record.Subject, record.Key)
	if existing, ok := m.data[ck]; ok {
		record.Version = existing.Version + 1
	} else {
		record.Version = 1
	}
	record.DateTime = time.Now()
	m.data[ck] = record
	return nil
}

func (m *mockUserDataStore) Delete(_ context.Context, userID, subject, key string) error {
	delete(m.data, m.compositeKey(userID, subject, key))
	return nil
}

func (m *mockUserDataStore) List(_ context.Context, userID, subject string) ([]*models.UserRecord, error) {
	var out []*models.UserRecord
	for _, rec := range m.data {
		if rec.UserID == userID && rec.Subject == subject {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockUserDataStore) Close() error { return nil }

type mockStorageManager struct {
	userData *mockUserDataStore
}

func (m *mockStorageManager) InternalStore() interfaces.InternalStore         { return nil }
func (m *mockStorageManager) UserDataStore() interfaces.UserDataStore         { return m.userData }
func (m *mockStorageManager) MarketDataStorage() interfaces.MarketDataStorage { return nil }
func (m *mockStorageManager) DataPath() string                                { return "/tmp/test" }
func (m *mockStorageManager) WriteRaw(_, _ string, _ []byte) error            { return nil }
func (m *mockStorageManager) Close() error                                    { return nil }
