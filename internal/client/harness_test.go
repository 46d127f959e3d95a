package client

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/laneview/laneview/internal/common"
)

// testBackend is an httptest server that records every request it sees.
type testBackend struct {
	*httptest.Server
	mu       sync.Mutex
	requests []string
}

// newTestBackend wraps the handler with request recording.
func newTestBackend(t *testing.T, handler http.Handler) *testBackend {
	t.Helper()
	b := &testBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

// calls counts recorded requests matching "METHOD /path".
func (b *testBackend) calls(methodAndPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r == methodAndPath {
			n++
		}
	}
	return n
}

func (b *testBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// indexOf returns the position of the first matching request, or -1.
func (b *testBackend) indexOf(methodAndPath string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.requests {
		if r == methodAndPath {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// newTestClient builds a client with a session file in a temp dir.
func newTestClient(t *testing.T, origin string) (*Client, *SessionStore) {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewSessionStore failed: %v", err)
	}
	return New(origin, store, common.NewSilentLogger()), store
}

// seedSession stores a logged-in session before the client is exercised.
func seedSession(t *testing.T, store *SessionStore) {
	t.Helper()
	if err := store.Save(&Session{AccessToken: "test-token", Username: "alice"}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

func fp(v float64) *float64 { return &v }
