package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/inbox-triage/triage/internal/agent"
)

const (
	defaultPort          = 8080
	defaultRateLimit     = 30
	defaultRateWindowSec = 60
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Agent    AgentConfig  `yaml:"agent"`
	LogLevel string       `yaml:"log_level,omitempty"`
}

type ServerConfig struct {
	Port          int `yaml:"port"`
	RateLimit     int `yaml:"rate_limit"`
	RateWindowSec int `yaml:"rate_window_sec"`
}

// AgentConfig tunes the drafted-reply output.
type AgentConfig struct {
	SignOff string `yaml:"sign_off"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".triage", "config.yaml")
}

// Default returns a configuration that works without any file on disk.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          defaultPort,
			RateLimit:     defaultRateLimit,
			RateWindowSec: defaultRateWindowSec,
		},
		Agent: AgentConfig{
			SignOff: agent.DefaultSignOff,
		},
		LogLevel: "info",
	}
}

// Load reads the config file at path, fills in defaults for missing fields,
// and applies environment overrides. A missing file is not an error: the
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = defaultRateLimit
	}
	if cfg.Server.RateWindowSec == 0 {
		cfg.Server.RateWindowSec = defaultRateWindowSec
	}
	if cfg.Agent.SignOff == "" {
		cfg.Agent.SignOff = agent.DefaultSignOff
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets environment variables override file settings.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("TRIAGE_PORT", c.Server.Port)
	c.LogLevel = getEnv("TRIAGE_LOG_LEVEL", c.LogLevel)
	c.Agent.SignOff = getEnv("TRIAGE_SIGNOFF", c.Agent.SignOff)
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d is out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("server: rate_limit must be positive")
	}
	if c.Server.RateWindowSec < 1 {
		return fmt.Errorf("server: rate_window_sec must be positive")
	}
	if c.Agent.SignOff == "" {
		return fmt.Errorf("agent: sign_off is required")
	}
	return nil
}

// SetupLogger configures a zerolog logger from the configured level,
// writing JSON lines to stderr.
func (c *Config) SetupLogger() zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "triage").
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// getEnv gets an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
