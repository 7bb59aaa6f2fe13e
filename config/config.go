package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	DBURL        string `env:"DB_URL,required"`
	RedisAddress string `env:"REDIS_URL,required"`
	BearerToken  string `env:"BEARER_TOKEN,required"`
	SymmetricKey string `env:"SYMMETRIC_KEY,required"`

	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8930"`
	Env            string   `env:"ENV" envDefault:"production"`
	ClinicTimezone string   `env:"CLINIC_TIMEZONE" envDefault:"America/Bogota"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RateLimit struct {
		RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"15"`
		Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"30"`
	}

	Redis struct {
		PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
		MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
		DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"30s"`
		ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"10s"`
		MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	}

	SMTP struct {
		Host string `env:"SMTP_HOST"`
		Port int    `env:"SMTP_PORT" envDefault:"587"`
		User string `env:"SMTP_USER"`
		Pass string `env:"SMTP_PASS"`
		From string `env:"SMTP_FROM"`
	}

	Reminder struct {
		Interval time.Duration `env:"REMINDER_INTERVAL" envDefault:"15m"`
		LeadTime time.Duration `env:"REMINDER_LEAD_TIME" envDefault:"24h"`
	}

	Doctor struct {
		Email     string `env:"DOCTOR_EMAIL"`
		Password  string `env:"DOCTOR_PASSWORD"`
		FirstName string `env:"DOCTOR_FIRST_NAME" envDefault:"Doctor"`
		LastName  string `env:"DOCTOR_LAST_NAME" envDefault:"Salvadó"`
		DOB       string `env:"DOCTOR_DOB" envDefault:"1980-01-01"`
	}
}

// Load reads an optional .env file and parses the environment into an AppConfig.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if len(c.SymmetricKey) != 32 {
		return fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(c.SymmetricKey))
	}
	if _, err := time.LoadLocation(c.ClinicTimezone); err != nil {
		return fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit settings must be positive")
	}
	return nil
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// Location returns the clinic's time zone. Load has already validated it.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment reports whether verbose development behaviour is enabled.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// MailEnabled reports whether an SMTP relay has been configured.
func (c *AppConfig) MailEnabled() bool {
	return c.SMTP.Host != ""
}
