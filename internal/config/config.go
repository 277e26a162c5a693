package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every process-wide setting. It is parsed once at startup and
// read-only afterwards.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR"   envDefault:":8080"`

	MongoURL string `env:"MONGO_URL"`
	DBName   string `env:"DB_NAME"`

	StripeKey  string `env:"STRIPE_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`

	// ClientHost is the externally visible base URL used to build
	// activation, registration, and password reset links.
	ClientHost string `env:"CLIENT_HOST"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	SMS SMSConfig
}

// SMSConfig holds the SMS gateway credentials.
type SMSConfig struct {
	APIKey    string `env:"SMS_API_KEY"`
	APISecret string `env:"SMS_API_SECRET"`
	From      string `env:"SMS_FROM"`
}

// Load reads an optional .env file and parses the environment into Config.
func Load(logger *zerolog.Logger) *Config {
	// A missing .env file is fine outside development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// IsProduction reports whether the service runs with production error
// redaction enabled.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) validate() error {
	if c.MongoURL == "" {
		return fmt.Errorf("missing MONGO_URL environment variable")
	}
	if c.DBName == "" {
		return fmt.Errorf("missing DB_NAME environment variable")
	}
	if c.StripeKey == "" {
		return fmt.Errorf("missing STRIPE_KEY environment variable")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("missing PRIVATE_KEY environment variable")
	}
	if c.ClientHost == "" {
		return fmt.Errorf("missing CLIENT_HOST environment variable")
	}
	return nil
}
