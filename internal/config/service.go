package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Service holds the remote CV data service configuration.
type Service struct {
	BaseURL       string
	Token         string
	ClientID      string
	ClientSecret  string
	TokenURL      string
	Department    string
	Concurrency   int
	RetryAttempts int
	RetryDelay    time.Duration
	Timeout       time.Duration
}

// DefaultService returns a Service config with sensible defaults.
func DefaultService() Service {
	return Service{
		Concurrency:   8,
		RetryAttempts: 3,
		RetryDelay:    100 * time.Millisecond,
		Timeout:       30 * time.Second,
	}
}

// Validate checks if the configuration is usable.
func (c Service) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("data service base URL is required")
	}

	hasToken := c.Token != ""
	hasClientCreds := c.ClientID != "" && c.ClientSecret != "" && c.TokenURL != ""
	if !hasToken && !hasClientCreds {
		return fmt.Errorf("no authentication configured: provide a static token or OAuth2 client credentials")
	}
	if hasToken && hasClientCreds {
		return fmt.Errorf("multiple authentication methods configured; use either a static token or client credentials")
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	return nil
}

// LoadServiceConfig loads the data service configuration. Precedence:
// 1. Viper configuration (config file or VITAE_ env vars)
// 2. Direct environment variables (FACULTY_API_*)
// 3. Defaults
func LoadServiceConfig() (*Service, error) {
	cfg := DefaultService()

	if v := viper.GetString("service.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("service.token"); v != "" {
		cfg.Token = v
	}
	if v := viper.GetString("service.client_id"); v != "" {
		cfg.ClientID = v
	}
	if v := viper.GetString("service.client_secret"); v != "" {
		cfg.ClientSecret = v
	}
	if v := viper.GetString("service.token_url"); v != "" {
		cfg.TokenURL = v
	}
	if v := viper.GetString("service.department"); v != "" {
		cfg.Department = v
	}
	if v := viper.GetInt("service.concurrency"); v > 0 {
		cfg.Concurrency = v
	}
	if v := viper.GetInt("service.retry_attempts"); v > 0 {
		cfg.RetryAttempts = v
	}
	if v := viper.GetDuration("service.timeout"); v > 0 {
		cfg.Timeout = v
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("FACULTY_API_BASE_URL")
	}
	if cfg.Token == "" {
		cfg.Token = os.Getenv("FACULTY_API_TOKEN")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("FACULTY_API_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("FACULTY_API_CLIENT_SECRET")
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = os.Getenv("FACULTY_API_TOKEN_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabasePath resolves the snapshot cache location from configuration.
func DatabasePath() string {
	if v := viper.GetString("database.path"); v != "" {
		return ExpandPath(v)
	}
	if v := os.Getenv("VITAE_DB_PATH"); v != "" {
		return ExpandPath(v)
	}
	return DefaultDatabasePath()
}
