package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from MONEY_* environment variables. A .env file in the
// working directory is loaded first when present.
type Config struct {
	Port        string        `default:"8080"`
	DatabaseURL string        `split_words:"true" required:"true"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `split_words:"true" default:"168h"`

	LogLevel  string `split_words:"true" default:"info"`
	LogPretty bool   `split_words:"true"`

	AllowedOrigins    []string `split_words:"true"`
	ReadOnly          bool     `split_words:"true"`
	AllowRegistration bool     `split_words:"true" default:"true"`

	ExchangeRatioMin     float64 `split_words:"true" default:"1000"`
	ExchangeRatioMax     float64 `split_words:"true" default:"1600"`
	MatchWindowDays      int     `split_words:"true" default:"3"`
	ChartSampleThreshold int     `split_words:"true" default:"1000"`
	ChartSampleRatio     int     `split_words:"true" default:"50"`

	ImportProfiles string `split_words:"true" default:"import_profiles.yaml"`

	PlaidClientID   string `split_words:"true"`
	PlaidSecret     string `split_words:"true"`
	PlaidEnv        string `split_words:"true"`
	PlaidWebhookURL string `split_words:"true"`
}

const envPrefix = "MONEY"

func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("envconfig.Process: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ExchangeRatioMin <= 0 || c.ExchangeRatioMax < c.ExchangeRatioMin {
		return fmt.Errorf("invalid exchange ratio bounds [%v, %v]", c.ExchangeRatioMin, c.ExchangeRatioMax)
	}
	if c.MatchWindowDays < 0 {
		return errors.New("MATCH_WINDOW_DAYS must not be negative")
	}
	if c.ChartSampleRatio <= 0 {
		return errors.New("CHART_SAMPLE_RATIO must be positive")
	}
	switch c.PlaidEnv {
	case "", "sandbox", "production":
	default:
		return fmt.Errorf("invalid Plaid environment: %s", c.PlaidEnv)
	}
	return nil
}

// PlaidEnabled reports whether bank aggregation credentials are configured.
func (c Config) PlaidEnabled() bool {
	return c.PlaidEnv != "" && c.PlaidClientID != "" && c.PlaidSecret != ""
}
