package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

func validConfig() *Config {
	return &Config{
		EmailPattern:    `[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		PasswordPattern: `.{6,}`,
		PasswordMessage: "password must be at least 6 characters",
		JWTSecret:       strings.Repeat("k", MinJWTSecretBytes),
		JWTExpiration:   time.Hour,
		Store:           StorePostgres,
	}
}

func TestLoadReadsRegistrationSettings(t *testing.T) {
	t.Setenv("VALIDATION_EMAIL_PATTERN", `.+@.+`)
	t.Setenv("VALIDATION_PASSWORD_PATTERN", `.{8,}`)
	t.Setenv("VALIDATION_PASSWORD_MESSAGE", "too short")
	t.Setenv("JWT_SECRET", strings.Repeat("s", 70))
	t.Setenv("JWT_EXPIRATION_MS", "86400000")
	t.Setenv("SIGNUP_RATE_LIMIT", "3")

	cfg := Load()

	assert.Equal(t, `.+@.+`, cfg.EmailPattern)
	assert.Equal(t, `.{8,}`, cfg.PasswordPattern)
	assert.Equal(t, "too short", cfg.PasswordMessage)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 3, cfg.SignUpRateLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadStoreDriver(t *testing.T) {
	assert.Equal(t, StorePostgres, Load().Store)

	t.Setenv("STORE_DRIVER", "Memory")
	assert.Equal(t, StoreMemory, Load().Store)
}

func TestLoadFallsBackOnBadMillis(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MS", "soon")

	assert.Equal(t, 24*time.Hour, Load().JWTExpiration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"blank email pattern", func(c *Config) { c.EmailPattern = "  " }, "VALIDATION_EMAIL_PATTERN"},
		{"blank password pattern", func(c *Config) { c.PasswordPattern = "" }, "VALIDATION_PASSWORD_PATTERN"},
		{"blank password message", func(c *Config) { c.PasswordMessage = "" }, "VALIDATION_PASSWORD_MESSAGE"},
		{"short secret", func(c *Config) { c.JWTSecret = strings.Repeat("k", MinJWTSecretBytes-1) }, "JWT_SECRET"},
		{"zero expiry", func(c *Config) { c.JWTExpiration = 0 }, "JWT_EXPIRATION_MS"},
		{"unknown store", func(c *Config) { c.Store = "sqlite" }, "STORE_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, err.Error(), cfg.JWTSecret)
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example , ,https://b.example"}

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}
