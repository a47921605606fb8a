package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is the application version, injected at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Cycle    CycleConfig    `mapstructure:"cycle"`
	Email    EmailConfig    `mapstructure:"email"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// CycleConfig holds daily cycle configuration.
type CycleConfig struct {
	Length        time.Duration `mapstructure:"length"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	CommitRetries int           `mapstructure:"commit_retries"`
	SweepCron     string        `mapstructure:"sweep_cron"`
}

// EmailConfig holds SMTP configuration for cycle summary emails.
type EmailConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Server     string `mapstructure:"server"`
	Port       int    `mapstructure:"port"`
	Encryption string `mapstructure:"encryption"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	From       string `mapstructure:"from"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/teyra.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Cycle: CycleConfig{
			Length:        24 * time.Hour,
			LockTTL:       48 * time.Hour,
			CommitRetries: 3,
			SweepCron:     "*/15 * * * *",
		},
		Email: EmailConfig{
			Port:       587,
			Encryption: "preferred",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.teyra")
	}

	// Environment variable settings
	v.SetEnvPrefix("TEYRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	// Unmarshal into struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Cycle.Length <= 0 {
		return nil, fmt.Errorf("cycle.length must be positive, got %s", cfg.Cycle.Length)
	}
	if cfg.Cycle.LockTTL < cfg.Cycle.Length {
		// A lock TTL shorter than the cycle would reclaim live locks.
		cfg.Cycle.LockTTL = 2 * cfg.Cycle.Length
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.path", "./data/teyra.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	// Cycle defaults
	v.SetDefault("cycle.length", "24h")
	v.SetDefault("cycle.lock_ttl", "48h")
	v.SetDefault("cycle.commit_retries", 3)
	v.SetDefault("cycle.sweep_cron", "*/15 * * * *")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)
	v.SetDefault("email.encryption", "preferred")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
