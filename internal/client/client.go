package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/laneview/laneview/internal/common"
)

// Error copy shown to the user. Transport failures map onto ErrNetwork on
// every operation; ErrStale marks a fetch superseded by a newer one for
// the same panel.
var (
	ErrNetwork = errors.New("Network error. Please try again.")
	ErrStale   = errors.New("superseded by a newer request")
)

// Client drives the LaneView backend for the terminal UI. Session and
// view-state mutations funnel through here and the gateway guard.
type Client struct {
	gateway  *Gateway
	sessions *SessionStore
	state    *State
	logger   *common.Logger
}

// New builds a client against the given server origin. The stored session
// decides the starting view: present means main, absent means auth.
func New(origin string, sessions *SessionStore, logger *common.Logger) *Client {
	state := NewState()
	c := &Client{
		gateway:  NewGateway(origin, sessions, state, logger),
		sessions: sessions,
		state:    state,
		logger:   logger,
	}
	if session, err := sessions.Load(); err == nil && session != nil {
		state.SetView(ViewMain)
	}
	return c
}

// State exposes the view and panel outputs to the front-end.
func (c *Client) State() *State { return c.state }

// Username returns the stored username, or "" when logged out.
func (c *Client) Username() string {
	session, err := c.sessions.Load()
	if err != nil || session == nil {
		return ""
	}
	return session.Username
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.gateway.Do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

// failureError turns a non-2xx response into the message the panel shows:
// the server's detail when present, otherwise the fallback.
func failureError(resp *Response, fallback string) error {
	if detail := resp.Detail(); detail != "" {
		return errors.New(detail)
	}
	return errors.New(fallback)
}

// Login exchanges credentials for a bearer token and stores it together
// with the username. Failures surface as the server's detail or
// "Login failed."; transport problems as ErrNetwork.
func (c *Client) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("Username and password are required.")
	}

	form := url.Values{"username": {username}, "password": {password}}
	resp, err := c.gateway.Do(ctx, http.MethodPost, "/token",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Login request failed")
		return ErrNetwork
	}
	if !resp.OK {
		return failureError(resp, "Login failed.")
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.Decode(&out); err != nil || out.AccessToken == "" {
		return errors.New("Login failed.")
	}
	if err := c.sessions.Save(&Session{AccessToken: out.AccessToken, Username: username}); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	c.state.SetView(ViewMain)
	return nil
}

// Logout clears the stored session. No backend call is involved.
func (c *Client) Logout() error {
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	c.state.ForceAuth()
	return nil
}

// Register creates an account and returns the check-your-email message.
func (c *Client) Register(ctx context.Context, email, username, password string) (string, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return "", errors.New("Email, username and password are required.")
	}

	resp, err := c.postJSON(ctx, "/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("Register request failed")
		return "", ErrNetwork
	}
	if !resp.OK {
		return "", failureError(resp, "Registration failed.")
	}
	return "Registration successful. Please check your email to verify your account.", nil
}

// StartupAction says which link type HandleStartupURL consumed.
type StartupAction int

const (
	StartupNone StartupAction = iota
	StartupVerified
	StartupReset
)

// HandleStartupURL consumes an emailed verification or reset link. The
// token parameter feeds exactly one backend call and is stripped from the
// returned URL on success and failure alike, so re-opening the cleaned URL
// cannot replay it. Reset links need a new password, supplied through
// promptPassword.
func (c *Client) HandleStartupURL(ctx context.Context, rawURL string, promptPassword func() (string, error)) (string, StartupAction, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, StartupNone, "", fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()

	if token := q.Get("verify_token"); token != "" {
		q.Del("verify_token")
		u.RawQuery = q.Encode()
		return u.String(), StartupVerified, c.verifyEmail(ctx, token), nil
	}

	if token := q.Get("reset_token"); token != "" {
		q.Del("reset_token")
		u.RawQuery = q.Encode()
		if promptPassword == nil {
			return u.String(), StartupReset, "", errors.New("a new password is required to complete the reset")
		}
		password, err := promptPassword()
		if err != nil {
			return u.String(), StartupReset, "", err
		}
		message, err := c.ResetPassword(ctx, token, password)
		if err != nil {
			return u.String(), StartupReset, "", err
		}
		return u.String(), StartupReset, message, nil
	}

	return rawURL, StartupNone, "", nil
}

// verifyEmail makes the single verification call and always reduces the
// outcome to a display message.
func (c *Client) verifyEmail(ctx context.Context, token string) string {
	resp, err := c.gateway.Do(ctx, http.MethodGet, "/verify-email?token="+url.QueryEscape(token), nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Verification request failed")
		return ErrNetwork.Error()
	}
	if !resp.OK {
		if detail := resp.Detail(); detail != "" {
			return detail
		}
		return "Verification failed."
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := resp.Decode(&out); err != nil || out.Message == "" {
		return "Email verified successfully. You can now log in."
	}
	return out.Message
}

// ForgotPassword requests a reset link. The confirmation reads the same
// whether or not the address is registered.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("Email is required.")
	}

	resp, err := c.postJSON(ctx, "/forgot-password", map[string]string{"email": email})
	if err != nil {
		c.logger.Debug().Err(err).Msg("Forgot-password request failed")
		return "", ErrNetwork
	}
	if !resp.OK {
		return "", failureError(resp, "Failed to request a reset link.")
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := resp.Decode(&out); err != nil || out.Message == "" {
		return "If that email is registered, a reset link has been sent.", nil
	}
	return out.Message, nil
}

// ResetPassword completes a password reset with an emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if newPassword == "" {
		return "", errors.New("A new password is required.")
	}

	resp, err := c.postJSON(ctx, "/reset-password", map[string]string{
		"token":        token,
		"new_password": newPassword,
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("Reset-password request failed")
		return "", ErrNetwork
	}
	if !resp.OK {
		return "", failureError(resp, "Failed to reset password.")
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := resp.Decode(&out); err != nil || out.Message == "" {
		return "Password has been reset successfully. You can now log in.", nil
	}
	return out.Message, nil
}

// Companies fetches the registered company list.
func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	resp, err := c.gateway.Do(ctx, http.MethodGet, "/companies", nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Company list request failed")
		return nil, ErrNetwork
	}
	if !resp.OK {
		return nil, failureError(resp, "Failed to load companies.")
	}
	var companies []Company
	if err := resp.Decode(&companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}
	return companies, nil
}

// createCompany validates locally and posts the create. Validation
// failures never reach the network.
func (c *Client) createCompany(ctx context.Context, name, ticker, segment string) (*Company, error) {
	name = strings.TrimSpace(name)
	ticker = strings.TrimSpace(ticker)
	segment = strings.TrimSpace(segment)
	if name == "" || ticker == "" || segment == "" {
		return nil, errors.New("Name, ticker and segment are required.")
	}
	if !ValidSegment(segment) {
		return nil, fmt.Errorf("Unknown segment %q. Valid segments: %s.", segment, strings.Join(Segments(), ", "))
	}

	resp, err := c.postJSON(ctx, "/companies", map[string]string{
		"name":    name,
		"ticker":  ticker,
		"segment": segment,
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("Company create request failed")
		return nil, ErrNetwork
	}
	if !resp.OK {
		return nil, failureError(resp, "Failed to create company.")
	}
	var created Company
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode company: %w", err)
	}
	return &created, nil
}

// CreateCompany registers a company and, on success, runs the full reload
// so every panel reflects the new portfolio.
func (c *Client) CreateCompany(ctx context.Context, name, ticker, segment string) (*Company, *ReloadResult, error) {
	created, err := c.createCompany(ctx, name, ticker, segment)
	if err != nil {
		return nil, nil, err
	}
	reload, err := c.FullReload(ctx)
	return created, reload, err
}

// DeleteCompany asks for confirmation, issues the delete, and reloads
// everything on success. A declined confirmation makes no backend call.
func (c *Client) DeleteCompany(ctx context.Context, target Company, confirm func(Company) bool) (bool, *ReloadResult, error) {
	if confirm != nil && !confirm(target) {
		return false, nil, nil
	}

	resp, err := c.gateway.Do(ctx, http.MethodDelete, "/companies/"+url.PathEscape(target.ID), nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Company delete request failed")
		return false, nil, ErrNetwork
	}
	if !resp.OK {
		return false, nil, failureError(resp, "Failed to delete company.")
	}

	reload, err := c.FullReload(ctx)
	return true, reload, err
}

// ReloadResult is the outcome of the full data-load sequence.
type ReloadResult struct {
	Companies  []Company
	Dashboard  *Dashboard
	SectorText string
}

// FullReload runs the company-list and dashboard fetches concurrently,
// waits for both, then refreshes sector analytics. The ordering matters:
// the commentary has to describe the portfolio the tables just showed.
func (c *Client) FullReload(ctx context.Context) (*ReloadResult, error) {
	var (
		wg        sync.WaitGroup
		companies []Company
		dashboard *Dashboard
		listErr   error
		dashErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		companies, listErr = c.Companies(ctx)
	}()
	go func() {
		defer wg.Done()
		dashboard, dashErr = c.Dashboard(ctx)
	}()
	wg.Wait()
	if listErr != nil {
		return nil, listErr
	}
	if dashErr != nil {
		return nil, dashErr
	}

	text, err := c.SectorAnalytics(ctx)
	if err != nil {
		// The analytics panel degrades to its error message; the tables
		// above it are still valid.
		text = err.Error()
	}
	return &ReloadResult{Companies: companies, Dashboard: dashboard, SectorText: text}, nil
}

// Dashboard fetches the aggregate metrics and commits the rendered tables
// to the dashboard panel.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	seq := c.state.Begin(PanelDashboard)

	resp, err := c.gateway.Do(ctx, http.MethodGet, "/dashboard", nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Dashboard request failed")
		return nil, ErrNetwork
	}
	if !resp.OK {
		return nil, failureError(resp, "Failed to load dashboard.")
	}
	var d Dashboard
	if err := resp.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	if !c.state.Commit(PanelDashboard, seq, RenderDashboard(&d)) {
		return nil, ErrStale
	}
	return &d, nil
}

// CompanyDetail fetches one company's detail bundle and commits the
// rendered view to the detail panel. Overlapping fetches resolve in favor
// of the most recently begun one regardless of arrival order.
func (c *Client) CompanyDetail(ctx context.Context, companyID string) (*Detail, error) {
	seq := c.state.Begin(PanelDetail)

	resp, err := c.gateway.Do(ctx, http.MethodGet, "/companies/"+url.PathEscape(companyID)+"/detail", nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Company detail request failed")
		return nil, ErrNetwork
	}
	if !resp.OK {
		return nil, failureError(resp, "Failed to load company detail.")
	}
	var d Detail
	if err := resp.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode company detail: %w", err)
	}
	if !c.state.Commit(PanelDetail, seq, RenderDetail(&d)) {
		return nil, ErrStale
	}
	return &d, nil
}

// Chart fetches the revenue-by-segment bar chart as PNG bytes.
func (c *Client) Chart(ctx context.Context) ([]byte, error) {
	resp, err := c.gateway.Do(ctx, http.MethodGet, "/dashboard/chart", nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Chart request failed")
		return nil, ErrNetwork
	}
	if !resp.OK {
		return nil, failureError(resp, "Failed to load chart.")
	}
	return resp.Body, nil
}

// SectorAnalytics refreshes the portfolio commentary panel. The panel
// shows the placeholder while the call is in flight and ends up with the
// commentary, the fallback line, or the failure message.
func (c *Client) SectorAnalytics(ctx context.Context) (string, error) {
	return c.analytics(ctx, PanelSector, "/analytics/sector", SectorPlaceholder)
}

// CompanyAnalytics refreshes the per-company commentary panel.
func (c *Client) CompanyAnalytics(ctx context.Context, companyID string) (string, error) {
	return c.analytics(ctx, PanelCompany, "/analytics/company/"+url.PathEscape(companyID), CompanyPlaceholder)
}

func (c *Client) analytics(ctx context.Context, panel Panel, path, placeholder string) (string, error) {
	seq := c.state.Begin(panel)
	c.state.Commit(panel, seq, placeholder)

	resp, err := c.gateway.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Analytics request failed")
		c.state.Commit(panel, seq, ErrNetwork.Error())
		return "", ErrNetwork
	}
	if !resp.OK {
		err := failureError(resp, "Failed to load analysis.")
		c.state.Commit(panel, seq, err.Error())
		return "", err
	}
	var out analyticsText
	if err := resp.Decode(&out); err != nil {
		c.state.Commit(panel, seq, NoAnalysisFallback)
		return "", fmt.Errorf("failed to decode analytics: %w", err)
	}

	text := RenderAnalytics(out.Text)
	if !c.state.Commit(panel, seq, text) {
		return "", ErrStale
	}
	return text, nil
}
