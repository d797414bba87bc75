package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, "zishanhack_token", cfg.Session.StorageKey)
	assert.Equal(t, []string{"zishanhack.com", ".zishanhack.com"}, cfg.Session.CookieDomains)
	assert.Equal(t, 5, cfg.Checkout.PollAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Checkout.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Checkout.SettleDelay)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://backend.test")
	t.Setenv("SESSION_COOKIE_DOMAINS", "shop.test")
	t.Setenv("CHECKOUT_SETTLE_DELAY", "10ms")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "http://backend.test", cfg.BackendURL())
	assert.Equal(t, []string{"shop.test"}, cfg.Session.CookieDomains)
	assert.Equal(t, 10*time.Millisecond, cfg.Checkout.SettleDelay)
}

func TestBackendURLByEnvironment(t *testing.T) {
	cfg := &Config{Environment: Environment{Name: "development"}}
	assert.Equal(t, "http://localhost:8787", cfg.BackendURL())

	cfg.Environment.Name = "production"
	assert.Equal(t, "https://api.zishanhack.com", cfg.BackendURL())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Log{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "k=v")
}
