package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config stores CLI configuration
type Config struct {
	Server string `json:"server"` // API server address
	Model  string `json:"model"`  // Default generation model
}

const defaultServer = "http://localhost:9000"

// GetConfigPath returns the configuration file path (~/.kgctl/config.json)
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".kgctl", "config.json"), nil
}

// Load loads configuration from file, falling back to defaults when no file
// exists yet.
func Load() (*Config, error) {
	configFile, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return &Config{Server: defaultServer}, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server == "" {
		cfg.Server = defaultServer
	}

	return &cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
