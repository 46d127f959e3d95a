// Package mailer delivers account emails through the Mailjet v3.1 API.
// With no API keys configured it logs the links instead of sending, so
// registration and password flows keep working in development.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/laneview/laneview/internal/common"
	"github.com/laneview/laneview/internal/interfaces"
)

// Compile-time interface check
var _ interfaces.Mailer = (*Service)(nil)

const (
	// DefaultBaseURL is the Mailjet v3.1 API root
	DefaultBaseURL = "https://api.mailjet.com/v3.1"

	// DefaultTimeout for send requests
	DefaultTimeout = 15 * time.Second
)

// Service implements Mailer on top of the Mailjet HTTP API
type Service struct {
	apiKey     string
	apiSecret  string
	sender     string
	senderName string
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// Option configures the mailer
type Option func(*Service)

// WithBaseURL overrides the Mailjet endpoint (used in tests)
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout for send requests
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.httpClient.Timeout = timeout
	}
}

// NewService creates a mailer from mail configuration
func NewService(cfg common.MailConfig, logger *common.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	s := &Service{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// configured reports whether Mailjet credentials are present.
func (s *Service) configured() bool {
	return s.apiKey != "" && s.apiSecret != ""
}

// SendVerificationEmail sends the email-verification link.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, verifyLink string) error {
	if !s.configured() {
		s.logger.Info().
			Str("to", toEmail).
			Str("link", verifyLink).
			Msg("Mail keys not configured, verification link logged instead of sent")
		return nil
	}

	subject := fmt.Sprintf("Verify your email - %s", s.senderName)

	textBody := fmt.Sprintf(`Hi,

Thanks for signing up on %s.

Please click the link below to verify your email address (valid for 30 minutes):
%s

If you did not request this, you can ignore this email.

Regards,
%s
`, s.senderName, verifyLink, s.senderName)

	htmlBody := fmt.Sprintf(`<p>Hi,</p>
<p>Thanks for signing up on <strong>%s</strong>.</p>
<p>Please click the link below to verify your email address (valid for 30 minutes):</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>
<p>Regards,<br/>%s</p>
`, s.senderName, verifyLink, verifyLink, s.senderName)

	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

// SendPasswordResetEmail sends the password-reset link.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error {
	if !s.configured() {
		s.logger.Info().
			Str("to", toEmail).
			Str("link", resetLink).
			Msg("Mail keys not configured, reset link logged instead of sent")
		return nil
	}

	subject := fmt.Sprintf("Reset your password - %s", s.senderName)

	textBody := fmt.Sprintf(`Hi,

We received a request to reset your %s password.

Please click the link below to choose a new password (valid for 30 minutes):
%s

If you did not request this, you can ignore this email and your password will remain unchanged.

Regards,
%s
`, s.senderName, resetLink, s.senderName)

	htmlBody := fmt.Sprintf(`<p>Hi,</p>
<p>We received a request to reset your <strong>%s</strong> password.</p>
<p>Please click the link below to choose a new password (valid for 30 minutes):</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email and your password will remain unchanged.</p>
<p>Regards,<br/>%s</p>
`, s.senderName, resetLink, resetLink, s.senderName)

	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

// mailjet v3.1 send payload

type address struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type message struct {
	From     address   `json:"From"`
	To       []address `json:"To"`
	Subject  string    `json:"Subject"`
	TextPart string    `json:"TextPart"`
	HTMLPart string    `json:"HTMLPart"`
}

type sendRequest struct {
	Messages []message `json:"Messages"`
}

func (s *Service) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	payload := sendRequest{
		Messages: []message{
			{
				From:     address{Email: s.sender, Name: s.senderName},
				To:       []address{{Email: toEmail}},
				Subject:  subject,
				TextPart: textBody,
				HTMLPart: htmlBody,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailjet send failed with status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Info().Str("to", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}
