package client

import (
	"context"
	"net/http"
	"testing"
)

func TestGateway_ResolvesRelativePaths(t *testing.T) {
	var gotPath string
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{}`)
	}))
	c, _ := newTestClient(t, b.URL)

	for _, path := range []string{"/companies", "companies"} {
		if _, err := c.gateway.Do(context.Background(), http.MethodGet, path, nil, ""); err != nil {
			t.Fatalf("Do(%q) failed: %v", path, err)
		}
		if gotPath != "/companies" {
			t.Errorf("Do(%q) hit %q, want /companies", path, gotPath)
		}
	}
}

func TestGateway_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{}`)
	}))
	c, store := newTestClient(t, b.URL)

	// logged out: no header
	if _, err := c.gateway.Do(context.Background(), http.MethodGet, "/dashboard", nil, ""); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}

	// logged in: bearer token attached
	seedSession(t, store)
	if _, err := c.gateway.Do(context.Background(), http.MethodGet, "/dashboard", nil, ""); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
}

func TestGateway_AuthRejectionForcesLogout(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, status, `{"detail":"Could not validate credentials (token)."}`)
		}))
		c, store := newTestClient(t, b.URL)
		seedSession(t, store)
		c.state.SetView(ViewMain)

		resp, err := c.gateway.Do(context.Background(), http.MethodGet, "/dashboard", nil, "")
		if err != nil {
			t.Fatalf("status %d: Do failed: %v", status, err)
		}

		// the caller still sees the rejected response
		if resp.StatusCode != status || resp.OK {
			t.Errorf("status %d: unexpected response %+v", status, resp)
		}
		// and the side effects have happened regardless
		if session, _ := store.Load(); session != nil {
			t.Errorf("status %d: expected the session to be cleared", status)
		}
		if c.state.View() != ViewAuth {
			t.Errorf("status %d: expected the auth view", status)
		}
	}
}

func TestGateway_OKLeavesSessionAlone(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"companies":[]}`)
	}))
	c, store := newTestClient(t, b.URL)
	seedSession(t, store)
	c.state.SetView(ViewMain)

	if _, err := c.gateway.Do(context.Background(), http.MethodGet, "/dashboard", nil, ""); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if session, _ := store.Load(); session == nil {
		t.Error("a 2xx must not clear the session")
	}
	if c.state.View() != ViewMain {
		t.Error("a 2xx must not change the view")
	}
}

func TestGateway_TransportErrorPropagates(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := b.URL
	b.Close()

	c, _ := newTestClient(t, origin)
	if _, err := c.gateway.Do(context.Background(), http.MethodGet, "/dashboard", nil, ""); err == nil {
		t.Fatal("expected a transport error from a closed server")
	}
}

func TestResponse_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail present", `{"detail":"Company not found"}`, "Company not found"},
		{"no detail field", `{"message":"ok"}`, ""},
		{"not json", `<html>boom</html>`, ""},
		{"empty body", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Body: []byte(tt.body)}
			if got := r.Detail(); got != tt.want {
				t.Errorf("Detail() = %q, want %q", got, tt.want)
			}
		})
	}
}
