// Package config tests.
package config

import (
	"os"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnvs(t *testing.T) {
	t.Helper()
	envs := map[string]string{
		"JWT_SECRET":        "test-secret",
		"DB_PATH":           "/tmp/studyhub-test.db",
		"CALENDAR_TIMEZONE": "Europe/Berlin",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// unsetEnv removes key for the duration of the test so envconfig applies
// its default; an empty value is parsed, not defaulted.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestLoad_Success(t *testing.T) {
	setRequiredEnvs(t)
	cfg, err := LoadWithPrefix("")
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "/tmp/studyhub-test.db", cfg.DBPath)
	assert.Equal(t, "Europe/Berlin", cfg.CalendarTimezone)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvs(t)
	unsetEnv(t, "HTTP_LISTEN_ADDR")
	unsetEnv(t, "RATE_LIMIT_RPS")
	unsetEnv(t, "LOG_LEVEL")
	unsetEnv(t, "SHUTDOWN_TIMEOUT")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPListenAddr)
	assert.Equal(t, 50, cfg.RateLimitRPS)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomListenAddr(t *testing.T) {
	setRequiredEnvs(t)
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPListenAddr)
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := &Config{CalendarTimezone: "UTC"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLocation(t *testing.T) {
	cfg := &Config{CalendarTimezone: "Europe/Berlin"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	cfg.CalendarTimezone = ""
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.CalendarTimezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{Environment: "Development"}).IsDevelopment())
	assert.False(t, (&Config{Environment: "production"}).IsDevelopment())
}
