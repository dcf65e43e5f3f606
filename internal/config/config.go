package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration, loaded from an optional
// YAML file with KG_-prefixed environment overrides.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Verification VerificationConfig `mapstructure:"verification"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Models       ModelsConfig       `mapstructure:"models"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"` // MiB
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// CORSConfig controls cross-origin access. An empty AllowedOrigin means any
// origin is accepted.
type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// RateLimitConfig controls per-client admission. MaxRequests requests are
// accepted per WindowSeconds window; MaxClients bounds how many client keys
// are tracked at once.
type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxClients    int `mapstructure:"max_clients"`
}

// Window returns the admission window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// VerificationConfig controls the human-verification provider. An empty
// Secret disables verification entirely.
type VerificationConfig struct {
	Secret  string        `mapstructure:"secret"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig controls the structured-generation backend.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ModelsConfig restricts which generation models may be requested.
// An empty Available list allows the full catalog.
type ModelsConfig struct {
	Available []string `mapstructure:"available"`
}

// Load reads configuration from configPath (or the default search path when
// empty), applies environment overrides, and validates the result. A missing
// config file is not an error; defaults plus environment are enough to run.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.max_request_body_size", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("ratelimit.max_requests", 20)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("ratelimit.max_clients", 8192)

	v.SetDefault("verification.url", "https://hcaptcha.com/siteverify")
	v.SetDefault("verification.timeout", "10s")

	v.SetDefault("openai.timeout", "5m")
}

// Validate checks the configuration for values that would make the server
// misbehave at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("ratelimit.max_requests must be positive, got %d", c.RateLimit.MaxRequests)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("ratelimit.window_seconds must be positive, got %d", c.RateLimit.WindowSeconds)
	}

	if c.Verification.Secret != "" && c.Verification.URL == "" {
		return fmt.Errorf("verification.url is required when verification.secret is set")
	}

	for _, m := range c.Models.Available {
		if !KnownModel(m) {
			return fmt.Errorf("unknown model in models.available: %s", m)
		}
	}

	return nil
}

// GetServerAddr returns the host:port the server should bind.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
