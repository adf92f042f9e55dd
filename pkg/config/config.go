package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeDuy-Vu/serialize-this/pkg/codec"
	"gopkg.in/yaml.v3"
)

// ErrFormatNotFound is returned when a format name is not in the catalogue.
var ErrFormatNotFound = errors.New("format not found")

// Config represents the serializer configuration
type Config struct {
	Formats []FormatDef `yaml:"formats"`
	Server  Server      `yaml:"server"`
	Storage Storage     `yaml:"storage"`
	Logging Logging     `yaml:"logging"`
}

// Server contains REST API settings
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Storage selects the packet archive backend
type Storage struct {
	Backend string `yaml:"backend"` // "pebble" or "bolt"
	Path    string `yaml:"path"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Formats: []FormatDef{ExampleFormat()},
		Server: Server{
			Bind:   "127.0.0.1",
			Port:   8080,
			APIKey: "auto",
		},
		Storage: Storage{
			Backend: BackendPebble,
			Path:    "./data",
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// ExampleFormat is the header layout written by BootstrapConfig.
func ExampleFormat() FormatDef {
	return FormatDef{
		Name:        "header",
		Description: "4-bit type, 4-bit length, one payload byte",
		Fields: FieldList{
			{Name: "type", Width: 4},
			{Name: "len", Width: 4},
			{Name: "payload", Width: 8},
		},
	}
}

// Format returns the validated codec layout of a catalogue entry.
func (c *Config) Format(name string) (codec.Format, error) {
	for _, def := range c.Formats {
		if def.Name != name {
			continue
		}
		f := def.Codec()
		if err := codec.ValidateFormat(f); err != nil {
			return nil, fmt.Errorf("format %q: %w", name, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFormatNotFound, name)
}

// Validate checks the catalogue and storage settings.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Formats))
	for _, def := range c.Formats {
		if def.Name == "" {
			return fmt.Errorf("format with empty name")
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate format %q", def.Name)
		}
		seen[def.Name] = true
		if err := codec.ValidateFormat(def.Codec()); err != nil {
			return fmt.Errorf("format %q: %w", def.Name, err)
		}
	}

	switch c.Storage.Backend {
	case "", BackendPebble, BackendBolt:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and saves it
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Storage.Path = dataDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	// Use OS-specific default locations
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./serialize.yaml"
	}

	// For Linux/macOS, use ~/.config/serialize/config.yaml
	configDir := filepath.Join(homeDir, ".config", "serialize")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
