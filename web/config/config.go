package config

import (
	"fmt"
	"os"
	"time"

	"punchme/utils"

	"gopkg.in/yaml.v3"
)

const DefaultAppLink = "https://apps.apple.com/app/punchme/id6447275121"

type SMTP struct {
	Server   string `yaml:"server"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Pass     string `yaml:"-"`
	FromAddr string `yaml:"from_addr"`
	FromName string `yaml:"from_name"`
}

type Twilio struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"-"`
	PhoneNumber string `yaml:"phone_number"`
	BaseURL     string `yaml:"base_url"`
}

type Config struct {
	Port     string `yaml:"port"`
	DBDriver string `yaml:"db_driver"`
	DSN      string `yaml:"-"`
	Secret   string `yaml:"-"`

	TokenTTL          time.Duration `yaml:"token_ttl"`
	CodeTTL           time.Duration `yaml:"code_ttl"`
	CodeSweepInterval time.Duration `yaml:"code_sweep_interval"`

	// Identifiers that always receive BackdoorCode instead of a random one.
	TestIdentifiers []string `yaml:"test_identifiers"`
	BackdoorCode    string   `yaml:"backdoor_code"`

	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`

	CORSOrigins []string `yaml:"cors_origins"`
	AppLink     string   `yaml:"app_link"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	SMTP   SMTP   `yaml:"smtp"`
	Twilio Twilio `yaml:"twilio"`
}

// Load reads the environment and then overlays the YAML file named by
// PUNCHME_CONFIG, if set. Secrets are only ever taken from the environment.
func Load() (*Config, error) {
	cfg := FromEnv()

	if path := os.Getenv("PUNCHME_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func FromEnv() *Config {
	return &Config{
		Port:     utils.GetEnv("GIN_PORT", "8080"),
		DBDriver: utils.GetEnv("DB_DRIVER", "mysql"),
		DSN:      os.Getenv("DB"),
		Secret:   os.Getenv("SECRET"),

		TokenTTL:          utils.GetEnvDuration("TOKEN_TTL", 30*24*time.Hour),
		CodeTTL:           utils.GetEnvDuration("CODE_TTL", 10*time.Minute),
		CodeSweepInterval: utils.GetEnvDuration("CODE_SWEEP_INTERVAL", 5*time.Minute),

		TestIdentifiers: utils.GetEnvList("TEST_IDENTIFIERS", []string{"+13103438777"}),
		BackdoorCode:    utils.GetEnv("BACKDOOR_CODE", "123456"),

		RateLimit:  utils.GetEnvInt("RATE_LIMIT", 15),
		RateWindow: utils.GetEnvDuration("RATE_WINDOW", time.Minute),

		CORSOrigins: utils.GetEnvList("CORS_ORIGINS", []string{"*"}),
		AppLink:     utils.GetEnv("APP_LINK", DefaultAppLink),

		LogLevel:  utils.GetEnv("LOG_LEVEL", "info"),
		LogFormat: utils.GetEnv("LOG_FORMAT", "json"),

		SMTP: SMTP{
			Server:   os.Getenv("SMTP_SERVER"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Pass:     os.Getenv("SMTP_PASS"),
			FromAddr: os.Getenv("FROM_ADDR"),
			FromName: utils.GetEnv("FROM_NAME", "PunchMe"),
		},
		Twilio: Twilio{
			AccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
			BaseURL:     utils.GetEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		},
	}
}

// MergeFile overlays the non-zero fields of a YAML file onto cfg.
func (cfg *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (cfg *Config) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("SECRET must be set")
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if !sixDigits(cfg.BackdoorCode) {
		return fmt.Errorf("backdoor code must have 6 digits")
	}
	if cfg.CodeTTL <= 0 || cfg.TokenTTL <= 0 {
		return fmt.Errorf("code and token TTLs must be positive")
	}
	if cfg.CodeSweepInterval <= 0 {
		return fmt.Errorf("code sweep interval must be positive")
	}
	if cfg.RateLimit <= 0 || cfg.RateWindow <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func sixDigits(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
