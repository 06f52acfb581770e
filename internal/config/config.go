// Package config handles configuration loading, validation, and persistence
// for the core server runtime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/wire"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"

	// DefaultListenPort is the standard Hotline Connect port (spec.md §6).
	DefaultListenPort     = 5500
	DefaultServerVersion  = 197
	DefaultMaxConnections = 100
	DefaultIdleTimeoutSec = 600
)

// Config is the root configuration recognized by the core (spec.md §6).
// The outer program is responsible for parsing this from disk and passing
// it in; the core itself only reads it.
type Config struct {
	mu   sync.RWMutex
	path string

	ListenAddr         string                 `json:"listen_addr"`
	ListenPort         int                    `json:"listen_port"`
	ServerName         string                 `json:"server_name"`
	ServerVersion      uint16                 `json:"server_version"`
	MaxConnections     int                    `json:"max_connections"`
	AllowGuest         bool                   `json:"allow_guest"`
	RequireLogin       bool                   `json:"require_login"`
	IdleTimeoutSecs    int                    `json:"idle_timeout_secs"`
	DefaultUserAccess  wire.AccessPrivileges  `json:"default_user_access"`
	DefaultGuestAccess wire.AccessPrivileges  `json:"default_guest_access"`
	DefaultAdminAccess wire.AccessPrivileges  `json:"default_admin_access"`

	AccountDBPath string        `json:"account_db_path"`
	Logging       LoggingConfig `json:"logging"`
	MQTT          MQTTConfig    `json:"mqtt"`
	API           APIConfig     `json:"api"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// MQTTConfig holds optional MQTT telemetry settings.
type MQTTConfig struct {
	Enabled   bool   `json:"enabled"`
	BrokerURL string `json:"broker_url"`
	Port      int    `json:"port"`
	UseTLS    bool   `json:"use_tls"`
	CertFile  string `json:"cert_file"`
	KeyFile   string `json:"key_file"`
	CAFile    string `json:"ca_file"`
	ClientID  string `json:"client_id"`
}

// APIConfig holds the read-only monitoring HTTP server settings.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	Port    int    `json:"port"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         "0.0.0.0",
		ListenPort:         DefaultListenPort,
		ServerName:         "rhxd Test Server",
		ServerVersion:      DefaultServerVersion,
		MaxConnections:     DefaultMaxConnections,
		AllowGuest:         true,
		RequireLogin:       false,
		IdleTimeoutSecs:    DefaultIdleTimeoutSec,
		DefaultUserAccess:  wire.AccessReadChat | wire.AccessSendChat | wire.AccessOpenChat,
		DefaultGuestAccess: wire.AccessReadChat | wire.AccessSendChat,
		DefaultAdminAccess: ^wire.AccessPrivileges(0),
		AccountDBPath:      "data/accounts.db",
		Logging: LoggingConfig{
			Level:      "info",
			Directory:  "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1",
			Port:    8089,
		},
	}
}

// Load reads configuration from a JSON file under configDir, creating one
// with defaults if it does not yet exist.
func Load(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, DefaultConfigFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configPath).Msg("config file not found, creating default")
			cfg := DefaultConfig()
			cfg.path = configPath
			if saveErr := cfg.Save(); saveErr != nil {
				return nil, fmt.Errorf("failed to save default config: %w", saveErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	cfg.path = configPath

	log.Info().Str("path", configPath).Msg("configuration loaded")
	return cfg, nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// Snapshot returns a copy of the config's fields, safe to read without
// holding the mutex across a suspension point.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := *c
	cp.mu = sync.RWMutex{}
	return cp
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}
