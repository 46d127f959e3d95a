// Package common provides shared utilities for LaneView
package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/laneview/laneview/internal/interfaces"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for LaneView
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Mail        MailConfig    `toml:"mail"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
	Client      ClientConfig  `toml:"client"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// ExternalURL is the origin used when building links placed in
	// verification and reset emails.
	ExternalURL string `toml:"external_url"`
}

// StorageConfig holds storage configuration.
// Backend selects the implementation: "badger" (embedded, default) or "surreal".
type StorageConfig struct {
	Backend  string     `toml:"backend"`
	Internal AreaConfig `toml:"internal"` // User accounts + config KV (BadgerHold)
	User     AreaConfig `toml:"user"`     // Per-user company records (BadgerHold)
	Market   AreaConfig `toml:"market"`   // Market snapshots (file-based JSON)

	// SurrealDB connection settings, used when backend is "surreal".
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MarketData MarketDataConfig `toml:"marketdata"`
	Gemini     GeminiConfig     `toml:"gemini"`
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	// CacheTTL controls how long a cached snapshot is considered fresh.
	CacheTTL string `toml:"cache_ttl"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses and returns the snapshot cache TTL
func (c *MarketDataConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// MailConfig holds Mailjet configuration for verification and reset emails.
// With APIKey/APISecret unset the mailer logs links instead of sending.
type MailConfig struct {
	APIKey     string `toml:"api_key"`
	APISecret  string `toml:"api_secret"`
	SenderName string `toml:"sender_name"`
	Sender     string `toml:"sender"`
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	JWTSecret        string `toml:"jwt_secret"`
	TokenExpiry      string `toml:"token_expiry"`       // access token lifetime, default "60m"
	EmailTokenExpiry string `toml:"email_token_expiry"` // verify/reset token lifetime, default "30m"
}

// GetTokenExpiry parses and returns the access token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 60 * time.Minute
	}
	return d
}

// GetEmailTokenExpiry parses and returns the email token expiry duration.
func (c *AuthConfig) GetEmailTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.EmailTokenExpiry)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// ClientConfig holds terminal client configuration.
type ClientConfig struct {
	ServerURL   string `toml:"server_url"`
	SessionFile string `toml:"session_file"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			ExternalURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Backend:   "badger",
			Internal:  AreaConfig{Path: "data/internal"},
			User:      AreaConfig{Path: "data/user"},
			Market:    AreaConfig{Path: "data/market"},
			Address:   "ws://localhost:8000",
			Username:  "root",
			Password:  "root",
			Namespace: "laneview",
			Database:  "laneview",
		},
		Clients: ClientsConfig{
			MarketData: MarketDataConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
				CacheTTL:  "6h",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.5-flash",
			},
		},
		Mail: MailConfig{
			SenderName: "LaneView",
			Sender:     "no-reply@laneview.local",
		},
		Auth: AuthConfig{
			JWTSecret:        "dev-jwt-secret-change-in-production",
			TokenExpiry:      "60m",
			EmailTokenExpiry: "30m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8080",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LANEVIEW_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("LANEVIEW_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("LANEVIEW_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if url := os.Getenv("LANEVIEW_EXTERNAL_URL"); url != "" {
		config.Server.ExternalURL = url
	}

	if level := os.Getenv("LANEVIEW_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("LANEVIEW_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if path := os.Getenv("LANEVIEW_DATA_PATH"); path != "" {
		config.Storage.Internal.Path = filepath.Join(path, "internal")
		config.Storage.User.Path = filepath.Join(path, "user")
		config.Storage.Market.Path = filepath.Join(path, "market")
	}

	if addr := os.Getenv("LANEVIEW_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	// Auth overrides
	if v := os.Getenv("LANEVIEW_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("LANEVIEW_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}

	// Mail overrides
	if v := os.Getenv("MJ_API_KEY"); v != "" {
		config.Mail.APIKey = v
	}
	if v := os.Getenv("MJ_SECRET"); v != "" {
		config.Mail.APISecret = v
	}
	if v := os.Getenv("MJ_SENDER"); v != "" {
		config.Mail.Sender = v
	}

	// Client overrides
	if v := os.Getenv("LANEVIEW_SERVER_URL"); v != "" {
		config.Client.ServerURL = v
	}
	if v := os.Getenv("LANEVIEW_SESSION_FILE"); v != "" {
		config.Client.SessionFile = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment, InternalStore, or fallback
func ResolveAPIKey(ctx context.Context, store interfaces.InternalStore, name string, fallback string) (string, error) {
	// Environment variable mapping
	keyToEnvMapping := map[string][]string{
		"marketdata_api_key": {"EODHD_API_KEY", "LANEVIEW_MARKETDATA_API_KEY"},
		"gemini_api_key":     {"GEMINI_API_KEY", "LANEVIEW_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try InternalStore system KV (medium priority)
	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}
