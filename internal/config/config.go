/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package config provides configuration management for EmberDB.

The configuration system supports multiple sources with clear precedence:
 1. Command-line flags (highest priority)
 2. Environment variables
 3. Configuration file
 4. Default values (lowest priority)

The configuration file uses YAML format.

Example configuration file:

	host: 0.0.0.0
	port: 5432
	data_dir: /var/lib/emberdb
	in_memory: false
	log_level: info
	log_json: false
	discovery_enabled: true
	create_table_if_not_exists: false

Environment Variables:
  - EMBERDB_HOST: Listen address
  - EMBERDB_PORT: Listen port
  - EMBERDB_DATA_DIR: Directory for database storage
  - EMBERDB_IN_MEMORY: Keep all data in memory (true/false)
  - EMBERDB_LOG_LEVEL: Log level (debug, info, warn, error)
  - EMBERDB_LOG_JSON: Enable JSON logging (true/false)
  - EMBERDB_DISCOVERY_ENABLED: Advertise the server over mDNS (true/false)
  - EMBERDB_CONFIG_FILE: Path to configuration file
*/
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Environment variable names for configuration.
const (
	EnvHost                   = "EMBERDB_HOST"
	EnvPort                   = "EMBERDB_PORT"
	EnvDataDir                = "EMBERDB_DATA_DIR"
	EnvInMemory               = "EMBERDB_IN_MEMORY"
	EnvLogLevel               = "EMBERDB_LOG_LEVEL"
	EnvLogJSON                = "EMBERDB_LOG_JSON"
	EnvDiscoveryEnabled       = "EMBERDB_DISCOVERY_ENABLED"
	EnvCreateTableIfNotExists = "EMBERDB_CREATE_TABLE_IF_NOT_EXISTS"
	EnvConfigFile             = "EMBERDB_CONFIG_FILE"
)

// GetDefaultDataDir returns the default directory for database storage.
// For root users, it uses /var/lib/emberdb (Filesystem Hierarchy Standard).
// For non-root users, it uses ~/.local/share/emberdb (XDG Base Directory).
func GetDefaultDataDir() string {
	if os.Getuid() == 0 {
		return "/var/lib/emberdb"
	}
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "emberdb")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "emberdb")
	}
	return "./data"
}

// Default configuration file paths (searched in order).
var DefaultConfigPaths = []string{
	"/etc/emberdb/emberdb.yaml",
	"$HOME/.config/emberdb/emberdb.yaml",
	"./emberdb.yaml",
}

// Config holds all configuration values for EmberDB.
type Config struct {
	// Network configuration
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Storage configuration
	DataDir  string `yaml:"data_dir"`
	InMemory bool   `yaml:"in_memory"`

	// Logging configuration
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// Service discovery
	DiscoveryEnabled bool `yaml:"discovery_enabled"`

	// SQL dialect switches
	CreateTableIfNotExists bool `yaml:"create_table_if_not_exists"`

	// Metadata
	ConfigFile string `yaml:"-"` // Path to loaded config file
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Host:                   "127.0.0.1",
		Port:                   5432,
		DataDir:                GetDefaultDataDir(),
		InMemory:               false,
		LogLevel:               "info",
		LogJSON:                false,
		DiscoveryEnabled:       false,
		CreateTableIfNotExists: false,
	}
}

// Addr returns the host:port pair the server should listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Manager handles configuration loading, validation, and access.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager with default values.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the configuration.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d (must be 1-65535)", c.Port))
	}
	if c.Host == "" {
		errs = append(errs, "host cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	if !c.InMemory && c.DataDir == "" {
		errs = append(errs, "data_dir cannot be empty unless in_memory is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
func (m *Manager) LoadFromFile(path string) error {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// This merges with existing configuration (env vars override file values).
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvInMemory); v != "" {
		cfg.InMemory = truthy(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = truthy(v)
	}
	if v := os.Getenv(EnvDiscoveryEnabled); v != "" {
		cfg.DiscoveryEnabled = truthy(v)
	}
	if v := os.Getenv(EnvCreateTableIfNotExists); v != "" {
		cfg.CreateTableIfNotExists = truthy(v)
	}

	m.Set(cfg)
}

func truthy(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// FindConfigFile searches for a configuration file in default locations.
// Returns the path to the first file found, or empty string if none found.
func FindConfigFile() string {
	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(os.ExpandEnv(envPath)); err == nil {
			return os.ExpandEnv(envPath)
		}
	}

	for _, path := range DefaultConfigPaths {
		expandedPath := os.ExpandEnv(path)
		if _, err := os.Stat(expandedPath); err == nil {
			return expandedPath
		}
	}

	return ""
}

// Load loads configuration from all sources with proper precedence.
// Order: defaults -> config file -> environment variables.
// Command-line flags should be applied after calling this function.
func (m *Manager) Load() error {
	configPath := FindConfigFile()
	if configPath != "" {
		if err := m.LoadFromFile(configPath); err != nil {
			return err
		}
	}

	m.LoadFromEnv()

	return nil
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("EmberDB Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Listen Address:   %s\n", c.Addr()))
	if c.InMemory {
		sb.WriteString("  Storage:          in-memory\n")
	} else {
		sb.WriteString(fmt.Sprintf("  Data Directory:   %s\n", c.DataDir))
	}
	sb.WriteString(fmt.Sprintf("  Log Level:        %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  Log JSON:         %v\n", c.LogJSON))
	sb.WriteString(fmt.Sprintf("  Discovery:        %v\n", c.DiscoveryEnabled))
	if c.ConfigFile != "" {
		sb.WriteString(fmt.Sprintf("  Config File:      %s\n", c.ConfigFile))
	}
	return sb.String()
}

// ToYAML returns the configuration as a YAML document.
func (c *Config) ToYAML() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return "# EmberDB Configuration File\n" + string(data)
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	path = os.ExpandEnv(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(c.ToYAML()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
