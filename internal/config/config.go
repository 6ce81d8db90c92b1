package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"resortdesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App          AppConfig          `yaml:"app"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Backup       BackupConfig       `yaml:"backup"`
	Monitoring   MonitoringConfig   `yaml:"monitoring"`
	Logging      LoggingConfig      `yaml:"logging"`
	API          APIConfig          `yaml:"api"`
	Reservations ReservationsConfig `yaml:"reservations"`
	Session      SessionConfig      `yaml:"session"`
	Staff        StaffConfig        `yaml:"staff"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
	JWTSecret    string         `yaml:"jwt_secret"`
	TokenTTL     time.Duration  `yaml:"token_ttl"`
	// LoginAttempts per LoginWindow per email before /auth/login answers 429.
	LoginAttempts int           `yaml:"login_attempts"`
	LoginWindow   time.Duration `yaml:"login_window"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Role        string   `yaml:"role"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// ReservationsConfig holds the booking rules shared by the availability
// check and the form validation.
type ReservationsConfig struct {
	MinGuests        int `yaml:"min_guests"`
	MaxGuests        int `yaml:"max_guests"`
	SlotMinutes      int `yaml:"slot_minutes"`
	MaxConcurrent    int `yaml:"max_concurrent"`
	MaxGuestsPerSlot int `yaml:"max_guests_per_slot"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type StaffConfig struct {
	BootstrapAdmin BootstrapAdmin `yaml:"bootstrap_admin"`
}

type BootstrapAdmin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Auth.Enabled && c.API.Auth.JWTSecret == "" && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth requires jwt_secret or at least one api key")
	}

	if err := ValidateAPIKeys(c.API.Auth.APIKeys); err != nil {
		return err
	}

	r := c.Reservations
	if r.MinGuests < 1 {
		return fmt.Errorf("reservations.min_guests must be >= 1, got %d", r.MinGuests)
	}
	if r.MaxGuests < r.MinGuests {
		return fmt.Errorf("reservations.max_guests (%d) is below min_guests (%d)", r.MaxGuests, r.MinGuests)
	}
	if r.MaxConcurrent < 1 {
		return fmt.Errorf("reservations.max_concurrent must be >= 1, got %d", r.MaxConcurrent)
	}

	return nil
}

func ValidateAPIKeys(keys []APIClientKey) error {
	seen := make(map[string]bool)
	for _, k := range keys {
		if strings.TrimSpace(k.Key) == "" {
			return fmt.Errorf("api key '%s' is empty", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key for client '%s'", k.Name)
		}
		seen[k.Key] = true
		if len(k.Permissions) == 0 && !models.ValidRole(k.Role) {
			return fmt.Errorf("api key '%s' has neither a known role nor permissions (role %q)", k.Name, k.Role)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8000
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.API.Auth.TokenTTL == 0 {
		c.API.Auth.TokenTTL = 12 * time.Hour
	}
	if c.API.Auth.LoginAttempts == 0 {
		c.API.Auth.LoginAttempts = 5
	}
	if c.API.Auth.LoginWindow == 0 {
		c.API.Auth.LoginWindow = time.Minute
	}

	c.Reservations.ApplyDefaults()

	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
}

// ApplyDefaults fills zero values with the canonical booking rules:
// 1..50 guests, one-hour slots, one event per slot.
func (r *ReservationsConfig) ApplyDefaults() {
	if r.MinGuests == 0 {
		r.MinGuests = 1
	}
	if r.MaxGuests == 0 {
		r.MaxGuests = 50
	}
	if r.SlotMinutes == 0 {
		r.SlotMinutes = 60
	}
	if r.MaxConcurrent == 0 {
		r.MaxConcurrent = 1
	}
}
