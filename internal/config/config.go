package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	APNs     APNsConfig     `yaml:"apns"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Matching MatchingConfig `yaml:"matching"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// APNsConfig holds Apple push notification configuration
type APNsConfig struct {
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// MatchingConfig holds tuning knobs for the cheer matching subsystem
type MatchingConfig struct {
	PoolCap           int           `yaml:"pool_cap"`
	ActiveWindowDays  int           `yaml:"active_window_days"`
	DailySendLimit    int           `yaml:"daily_send_limit"`
	CooldownHours     int           `yaml:"cooldown_hours"`
	SuggestionSize    int           `yaml:"suggestion_size"`
	RebuildInterval   time.Duration `yaml:"rebuild_interval"`
	SystemCheerEvery  time.Duration `yaml:"system_cheer_every"`
	DeliverySweepTick time.Duration `yaml:"delivery_sweep_tick"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Matching.applyDefaults()

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (m *MatchingConfig) applyDefaults() {
	if m.PoolCap == 0 {
		m.PoolCap = 100
	}
	if m.ActiveWindowDays == 0 {
		m.ActiveWindowDays = 7
	}
	if m.DailySendLimit == 0 {
		m.DailySendLimit = 10
	}
	if m.CooldownHours == 0 {
		m.CooldownHours = 24
	}
	if m.SuggestionSize == 0 {
		m.SuggestionSize = 3
	}
	if m.RebuildInterval == 0 {
		m.RebuildInterval = 30 * time.Minute
	}
	if m.SystemCheerEvery == 0 {
		m.SystemCheerEvery = time.Hour
	}
	if m.DeliverySweepTick == 0 {
		m.DeliverySweepTick = time.Minute
	}
}
