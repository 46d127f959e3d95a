package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session is the persisted credential pair. These are the only two values
// the client keeps across runs.
type Session struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

// SessionStore persists the session as a JSON file.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store at the given path. An empty path falls
// back to <user config dir>/laneview/session.json.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		path = filepath.Join(base, "laneview", "session.json")
	}
	return &SessionStore{path: path}, nil
}

// Path returns the session file location.
func (s *SessionStore) Path() string { return s.path }

// Load reads the stored session. A missing file means logged out and
// returns (nil, nil).
func (s *SessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session, creating the parent directory when needed.
func (s *SessionStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	// 0600: the file holds a bearer token
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
