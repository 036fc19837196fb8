// Package config loads and validates configuration at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
//
// Values come from environment variables, optionally layered over a config
// file passed with --config. Environment variables always win.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the marketplace service.
type Config struct {
	Port        string `mapstructure:"marketplace_port"`
	GRPCPort    string `mapstructure:"marketplace_grpc_port"`
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`

	DBMaxConns      int32 `mapstructure:"db_max_conns"`
	ConnectAttempts int   `mapstructure:"connect_attempts"`

	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	GeminiModel    string        `mapstructure:"gemini_model"`
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"`
	ExtractRPS     float64       `mapstructure:"extract_rps"`

	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUser       string `mapstructure:"smtp_user"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	SMTPSenderName string `mapstructure:"smtp_sender_name"`

	InvoiceOverdueDays int    `mapstructure:"invoice_overdue_days"`
	InvoiceSweepSpec   string `mapstructure:"invoice_sweep_spec"`

	SessionTTL time.Duration `mapstructure:"session_ttl"`

	LogJSON  bool `mapstructure:"log_json"`
	LogDebug bool `mapstructure:"log_debug"`
}

// keys lists every setting so AutomaticEnv can resolve it during Unmarshal.
var keys = []string{
	"marketplace_port", "marketplace_grpc_port", "database_url", "redis_url",
	"db_max_conns", "connect_attempts",
	"gemini_api_key", "gemini_model", "extract_timeout", "extract_rps",
	"smtp_host", "smtp_port", "smtp_user", "smtp_password", "smtp_sender_name",
	"invoice_overdue_days", "invoice_sweep_spec", "session_ttl",
	"log_json", "log_debug",
}

// SetDefaults configures default values for optional settings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("marketplace_port", "8083")
	v.SetDefault("marketplace_grpc_port", "9093")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("connect_attempts", 5)
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("extract_timeout", 8*time.Second)
	v.SetDefault("extract_rps", 2.0)
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_sender_name", "TutorHubBD")
	v.SetDefault("invoice_overdue_days", 30)
	v.SetDefault("invoice_sweep_spec", "@every 1h")
	v.SetDefault("session_ttl", 30*time.Minute)
}

// Load reads environment variables (and configFile, when non-empty) and
// returns a validated Config.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("CONNECT_ATTEMPTS must be a positive integer, got %d", c.ConnectAttempts)
	}
	if c.InvoiceOverdueDays < 1 {
		return fmt.Errorf("INVOICE_OVERDUE_DAYS must be a positive integer, got %d", c.InvoiceOverdueDays)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must be positive, got %s", c.ExtractTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// SMTPConfigured reports whether outbound email can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != ""
}
