package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONEY_DATABASE_URL", "postgres://localhost/money")
	t.Setenv("MONEY_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 1000.0, cfg.ExchangeRatioMin)
	assert.Equal(t, 1600.0, cfg.ExchangeRatioMax)
	assert.Equal(t, 3, cfg.MatchWindowDays)
	assert.True(t, cfg.AllowRegistration)
	assert.False(t, cfg.PlaidEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONEY_DATABASE_URL", "postgres://localhost/money")
	t.Setenv("MONEY_JWT_SECRET", "secret")
	t.Setenv("MONEY_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MONEY_READ_ONLY", "true")
	t.Setenv("MONEY_PLAID_ENV", "sandbox")
	t.Setenv("MONEY_PLAID_CLIENT_ID", "id")
	t.Setenv("MONEY_PLAID_SECRET", "s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ReadOnly)
	assert.True(t, cfg.PlaidEnabled())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("MONEY_DATABASE_URL", "")
	t.Setenv("MONEY_JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{DatabaseURL: "postgres://x", JWTSecret: "s", ExchangeRatioMin: 1000, ExchangeRatioMax: 1600, ChartSampleRatio: 50}

	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("inverted ratio bounds", func(t *testing.T) {
		c := base
		c.ExchangeRatioMax = 900
		assert.Error(t, c.Validate())
	})

	t.Run("bad plaid env", func(t *testing.T) {
		c := base
		c.PlaidEnv = "development"
		assert.Error(t, c.Validate())
	})
}
