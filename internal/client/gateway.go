package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/laneview/laneview/internal/common"
)

// Response is the outcome of one gateway call. OK is true for any 2xx
// status; callers decide what a failure means for their panel.
type Response struct {
	StatusCode int
	Body       []byte
	OK         bool
}

// Detail extracts the server's {"detail": ...} message, or "" when the
// body does not carry one.
func (r *Response) Detail() string {
	var out struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return ""
	}
	return out.Detail
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Gateway is the single path every backend call takes. It resolves
// relative paths against the configured origin, attaches the stored bearer
// token, and reacts to a 401/403 by clearing the session and forcing the
// auth view. The rejected response still goes back to the caller.
type Gateway struct {
	origin     string
	httpClient *http.Client
	sessions   *SessionStore
	state      *State
	logger     *common.Logger
}

// NewGateway creates a gateway for the given server origin.
func NewGateway(origin string, sessions *SessionStore, state *State, logger *common.Logger) *Gateway {
	return &Gateway{
		origin: strings.TrimRight(origin, "/"),
		// No timeout beyond the transport defaults; callers pass a
		// context when they want a deadline.
		httpClient: &http.Client{},
		sessions:   sessions,
		state:      state,
		logger:     logger,
	}
}

// resolve turns a relative path into an absolute URL on the origin.
// Absolute URLs pass through untouched.
func (g *Gateway) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.origin + path
}

// Do issues one request. Transport failures propagate to the caller;
// there are no retries.
func (g *Gateway) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// The session is re-read on every call, matching how the token is
	// mutated out-of-band by login, logout and the guard below.
	if session, err := g.sessions.Load(); err == nil && session != nil {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Central auth guard. Runs regardless of which panel made the
		// call, so an expired token observed anywhere logs out everywhere.
		if err := g.sessions.Clear(); err != nil {
			g.logger.Warn().Err(err).Msg("Failed to clear session after auth rejection")
		}
		g.state.ForceAuth()
	}

	return out, nil
}
