package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// DevSigningKey is the approval signing key used when none is configured.
// Only acceptable in development; Validate rejects it in production.
const DevSigningKey = "dev-insecure-signing-key"

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	AcceptThreshold float64  `mapstructure:"DECISION_ACCEPT_THRESHOLD"`
	ReviewThreshold float64  `mapstructure:"DECISION_REVIEW_THRESHOLD"`
	SigningKey      string   `mapstructure:"APPROVAL_SIGNING_KEY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("DECISION_ACCEPT_THRESHOLD", 0.8)
	v.SetDefault("DECISION_REVIEW_THRESHOLD", 0.5)
	v.SetDefault("APPROVAL_SIGNING_KEY", DevSigningKey)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("DECISION_ACCEPT_THRESHOLD")
	v.BindEnv("DECISION_REVIEW_THRESHOLD")
	v.BindEnv("APPROVAL_SIGNING_KEY")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() && cfg.SigningKey == DevSigningKey {
		log.Println("WARNING: APPROVAL_SIGNING_KEY not set; approval signatures use the development key.")
		log.Println("WARNING: Set APPROVAL_SIGNING_KEY before running in production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// approval signing key must be explicitly configured, and the decision
// thresholds must describe a coherent accept/review/reject band.
func (c *Config) Validate() error {
	if c.IsProduction() && c.SigningKey == DevSigningKey {
		return fmt.Errorf("APPROVAL_SIGNING_KEY is required in production")
	}
	if c.AcceptThreshold <= 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("DECISION_ACCEPT_THRESHOLD must be in (0,1], got %v", c.AcceptThreshold)
	}
	if c.ReviewThreshold <= 0 || c.ReviewThreshold > 1 {
		return fmt.Errorf("DECISION_REVIEW_THRESHOLD must be in (0,1], got %v", c.ReviewThreshold)
	}
	if c.ReviewThreshold >= c.AcceptThreshold {
		return fmt.Errorf("DECISION_REVIEW_THRESHOLD (%v) must be below DECISION_ACCEPT_THRESHOLD (%v)",
			c.ReviewThreshold, c.AcceptThreshold)
	}
	return nil
}
