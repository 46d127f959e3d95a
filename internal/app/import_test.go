package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
	"github.com/laneview/laneview/internal/models"
	"github.com/laneview/laneview/internal/storage/internaldb"
)

func newSeedStore(t *testing.T) interfaces.InternalStore {
	t.Helper()
	logger := common.NewSilentLogger()
	store, err := internaldb.NewStore(logger, filepath.Join(t.TempDir(), "internal"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func TestImportUsersFromFile_Success(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	path := writeSeedFile(t, `{
		"users": [
			{"username": "alice", "email": "alice@example.com", "password": "pass1"},
			{"username": "bob", "email": "bob@example.com", "password": "pass2"}
		]
	}`)

	imported, skipped, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err != nil {
		t.Fatalf("ImportUsersFromFile failed: %v", err)
	}
	if imported != 2 {
		t.Errorf("expected 2 imported, got %d", imported)
	}
	if skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", skipped)
	}

	user, err := store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername alice: %v", err)
	}
	if !user.IsActive || !user.IsVerified {
		t.Errorf("seeded user should be active and verified: %+v", user)
	}
	if user.UserID == "" {
		t.Error("seeded user should get a generated ID")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1")); err != nil {
		t.Errorf("password hash should verify: %v", err)
	}

	if _, err := store.GetUserByUsername(context.Background(), "bob"); err != nil {
		t.Errorf("expected bob to exist: %v", err)
	}
}

func TestImportUsersFromFile_NonExistentFile(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	_, _, err := ImportUsersFromFile(context.Background(), store, logger, "/nonexistent/path/users.json")
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
}

func TestImportUsersFromFile_InvalidJSON(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	path := writeSeedFile(t, "{{invalid json")
	_, _, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportUsersFromFile_Idempotent(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	// Pre-create alice
	if err := store.SaveUser(context.Background(), &models.InternalUser{
		UserID:       "u-alice",
		Username:     "alice",
		Email:        "existing@example.com",
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	path := writeSeedFile(t, `{
		"users": [
			{"username": "alice", "email": "new@example.com", "password": "pass1"},
			{"username": "bob", "email": "bob@example.com", "password": "pass2"}
		]
	}`)

	imported, skipped, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err != nil {
		t.Fatalf("ImportUsersFromFile failed: %v", err)
	}
	if imported != 1 {
		t.Errorf("expected 1 imported, got %d", imported)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}

	// Alice must not be overwritten
	user, _ := store.GetUserByUsername(context.Background(), "alice")
	if user.Email != "existing@example.com" {
		t.Errorf("expected alice's email unchanged, got %q", user.Email)
	}
}

func TestImportUsersFromFile_SkipsIncompleteRows(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	path := writeSeedFile(t, `{
		"users": [
			{"username": "", "email": "no-name@example.com", "password": "pass1"},
			{"username": "nomail", "email": "", "password": "pass2"},
			{"username": "nopass", "email": "nopass@example.com", "password": ""},
			{"username": "valid", "email": "valid@example.com", "password": "pass3"}
		]
	}`)

	imported, skipped, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err != nil {
		t.Fatalf("ImportUsersFromFile failed: %v", err)
	}
	if imported != 1 {
		t.Errorf("expected 1 imported, got %d", imported)
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped, got %d", skipped)
	}
}

func TestImportUsersFromFile_DuplicatesInSameFile(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	path := writeSeedFile(t, `{
		"users": [
			{"username": "dupe", "email": "first@x.com", "password": "pass1"},
			{"username": "dupe", "email": "second@x.com", "password": "pass2"}
		]
	}`)

	imported, skipped, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err != nil {
		t.Fatalf("ImportUsersFromFile failed: %v", err)
	}
	if imported != 1 {
		t.Errorf("expected 1 imported (first occurrence), got %d", imported)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped (duplicate), got %d", skipped)
	}

	user, _ := store.GetUserByUsername(context.Background(), "dupe")
	if user.Email != "first@x.com" {
		t.Errorf("expected first occurrence kept, got %q", user.Email)
	}
}

func TestImportUsersFromFile_MissingUsersKey(t *testing.T) {
	store := newSeedStore(t)
	logger := common.NewSilentLogger()

	path := writeSeedFile(t, `{"something_else": "value"}`)

	imported, skipped, err := ImportUsersFromFile(context.Background(), store, logger, path)
	if err != nil {
		t.Fatalf("ImportUsersFromFile failed: %v", err)
	}
	if imported != 0 || skipped != 0 {
		t.Errorf("expected 0/0, got %d/%d", imported, skipped)
	}
}
