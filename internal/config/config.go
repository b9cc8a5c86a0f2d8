// Package config reads settings from an optional YAML file, then .env, then
// the process environment. Later sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bukka/internal/storage"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	JWTSecret   string `yaml:"jwt_secret"`
	BackendURL  string `yaml:"backend_url"`
	DatabaseURL string `yaml:"database_url"`
	RabbitMQURL string `yaml:"rabbitmq_url"`

	CORSOrigins []string `yaml:"cors_origins"`

	DeliveryFee           decimal.Decimal `yaml:"-"`
	DeliveryFeeRaw        string          `yaml:"delivery_fee"`
	PaymentExpiryFallback time.Duration   `yaml:"payment_expiry_fallback"`
	SessionTTL            time.Duration   `yaml:"session_ttl"`
	SweepInterval         time.Duration   `yaml:"sweep_interval"`
	BackendTimeout        time.Duration   `yaml:"backend_timeout"`

	R2 storage.R2Config `yaml:"r2"`
}

func defaults() *Config {
	return &Config{
		Env:                   "development",
		Port:                  "8000",
		CORSOrigins:           []string{"http://localhost:3000", "http://localhost:5173"},
		DeliveryFeeRaw:        "1000",
		PaymentExpiryFallback: 30 * time.Minute,
		SessionTTL:            2 * time.Hour,
		SweepInterval:         5 * time.Minute,
		BackendTimeout:        30 * time.Second,
	}
}

// Load builds the configuration. A missing default config file or .env is
// fine; a missing explicit CONFIG_FILE is not.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "APP_ENV")
	setString(&c.Port, "PORT")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.BackendURL, "BACKEND_URL")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RabbitMQURL, "RABBITMQ_URL")
	setString(&c.DeliveryFeeRaw, "DELIVERY_FEE")

	setString(&c.R2.Endpoint, "R2_ENDPOINT")
	setString(&c.R2.AccessKey, "R2_ACCESS_KEY")
	setString(&c.R2.SecretKey, "R2_SECRET_KEY")
	setString(&c.R2.Bucket, "R2_BUCKET_NAME")
	setString(&c.R2.PublicBaseURL, "R2_PUBLIC_BASE_URL")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	for key, dst := range map[string]*time.Duration{
		"PAYMENT_EXPIRY_FALLBACK": &c.PaymentExpiryFallback,
		"SESSION_TTL":             &c.SessionTTL,
		"SWEEP_INTERVAL":          &c.SweepInterval,
		"BACKEND_TIMEOUT":         &c.BackendTimeout,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) finish() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.BackendURL == "" {
		missing = append(missing, "BACKEND_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing env var: %s", strings.Join(missing, ", "))
	}

	fee, err := decimal.NewFromString(strings.TrimSpace(c.DeliveryFeeRaw))
	if err != nil || fee.IsNegative() {
		return fmt.Errorf("DELIVERY_FEE must be a non-negative number, got %q", c.DeliveryFeeRaw)
	}
	c.DeliveryFee = fee

	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("45m") or whole seconds ("2700").
func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = time.Duration(secs) * time.Second
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
