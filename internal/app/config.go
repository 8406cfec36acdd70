package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"localhost/kroger-mcp/internal/kroger"
	"localhost/kroger-mcp/internal/secretstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Transport represents the MCP transports the server can listen on.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// SecretStorageType represents the storage backends supported for the client secret.
type SecretStorageType string

const (
	SecretStorageTypeEnv     SecretStorageType = "env"
	SecretStorageTypeFile    SecretStorageType = "file"
	SecretStorageTypeKeyring SecretStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat       = LogFormatText
	DefaultConfigTransport       = TransportStdio
	DefaultConfigServerHost      = "127.0.0.1"
	DefaultConfigServerPort      = 4020
	DefaultConfigShutdownTimeout = 5 * time.Second
	DefaultConfigUpstreamBaseURL = kroger.DefaultBaseURL
	DefaultConfigUpstreamScope   = kroger.ScopeProductCompact
	DefaultConfigUpstreamTimeout = 30 * time.Second
	DefaultConfigSecretStorage   = SecretStorageTypeEnv
	DefaultConfigSecretEnvKey    = "KROGER_CLIENT_SECRET"
)

// ServerConfig holds MCP transport configuration.
type ServerConfig struct {
	Transport Transport `json:"transport" validate:"required,oneof=stdio http"`
	Host      string    `json:"host" validate:"hostname_rfc1123|ip"`
	Port      uint16    `json:"port"` // Port range 0-65535 handled by uint16 type
}

// ShutdownConfig holds shutdown behavior configuration.
type ShutdownConfig struct {
	// Timeout for graceful shutdown.
	Timeout time.Duration `json:"timeout"`
}

// UpstreamConfig holds Kroger API configuration.
type UpstreamConfig struct {
	BaseURL string        `json:"base_url" validate:"required,url"`
	Scope   string        `json:"scope" validate:"required"`
	Timeout time.Duration `json:"timeout"`
}

// SecretConfig describes where the client secret lives.
// Backend-specific settings are mutually exclusive based on Storage type.
type SecretConfig struct {
	Storage SecretStorageType `json:"storage" validate:"required,oneof=env file keyring"`

	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable name
	File        string `json:"file,omitempty"`         // For file storage: path to secret file
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// AuthConfig represents the Kroger API credentials configuration.
// The client id is plain configuration; the secret is resolved through a
// secretstore backend exactly once at startup.
type AuthConfig struct {
	ClientID string       `json:"client_id" validate:"required"`
	Secret   SecretConfig `json:"secret"`
}

// NewSecretStore creates a secret store from the authentication configuration.
func (a *AuthConfig) NewSecretStore() (secretstore.Store, error) {
	switch a.Secret.Storage {
	case SecretStorageTypeEnv:
		return secretstore.NewEnvStore(a.Secret.EnvKey)
	case SecretStorageTypeFile:
		return secretstore.NewFileStore(a.Secret.File)
	case SecretStorageTypeKeyring:
		return secretstore.NewKeyringStore("kroger-mcp-client-secret", a.Secret.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", a.Secret.Storage)
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level     `json:"log_level"`
	LogFormat LogFormat      `json:"log_format" validate:"oneof=text json"`
	Server    ServerConfig   `json:"server"`
	Shutdown  ShutdownConfig `json:"shutdown"`
	Upstream  UpstreamConfig `json:"upstream"`
	Auth      AuthConfig     `json:"auth"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Server.Transport == "" {
		c.Server.Transport = DefaultConfigTransport
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfigServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultConfigServerPort
	}
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = DefaultConfigShutdownTimeout
	}
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultConfigUpstreamBaseURL
	}
	if c.Upstream.Scope == "" {
		c.Upstream.Scope = DefaultConfigUpstreamScope
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultConfigUpstreamTimeout
	}
	if c.Auth.Secret.Storage == "" {
		c.Auth.Secret.Storage = DefaultConfigSecretStorage
	}

	// Dynamic defaults based on storage type
	switch c.Auth.Secret.Storage {
	case SecretStorageTypeEnv:
		if c.Auth.Secret.EnvKey == "" {
			c.Auth.Secret.EnvKey = DefaultConfigSecretEnvKey
		}
	case SecretStorageTypeFile:
		if c.Auth.Secret.File == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("auth.secret.file required (auto-detect failed: %w)", err)
			}
			c.Auth.Secret.File = filepath.Join(configDir, "kroger-mcp", "client_secret")
		}
	case SecretStorageTypeKeyring:
		if c.Auth.Secret.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("auth.secret.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Auth.Secret.KeyringUser = currentUser.Username
		}
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Secret.Storage {
	case SecretStorageTypeEnv:
		if c.Auth.Secret.EnvKey == "" {
			return errors.New("env_key required for env storage")
		}
	case SecretStorageTypeFile:
		if c.Auth.Secret.File == "" {
			return errors.New("file path required for file storage")
		}
	case SecretStorageTypeKeyring:
		if c.Auth.Secret.KeyringUser == "" {
			return errors.New("keyring_user required for keyring storage")
		}
	}

	return nil
}
