package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SITE_URL", "APP_ENV", "EMAIL_PROVIDER", "AUTH_TOKEN_TTL_HOURS", "REVENUE_PER_CLICK", "CLICK_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 4, cfg.Server.ClickWorkers)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 1.0, cfg.Affiliate.RevenuePerClick)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SITE_URL", "https://deals.example.com/")
	t.Setenv("EMAIL_PROVIDER", "SES")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("REVENUE_PER_CLICK", "0.35")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://deals.example.com", cfg.Server.BaseURL, "Trailing slash should be trimmed")
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, 587, cfg.Email.SMTPPort, "Invalid integers fall back to the default")
	assert.Equal(t, 0.35, cfg.Affiliate.RevenuePerClick)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "Valid development config",
			mutate: func(c *Config) {},
		},
		{
			name:    "Missing database URL",
			mutate:  func(c *Config) { c.Database.URL = "" },
			wantErr: "DATABASE_URL is required",
		},
		{
			name: "Production requires auth secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Email.Provider = "smtp"
				c.Auth.JWTSecret = ""
			},
			wantErr: "AUTH_SECRET is required in production",
		},
		{
			name: "Production refuses log sender",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
			},
			wantErr: "EMAIL_PROVIDER=log is not allowed in production",
		},
		{
			name:    "SES needs credentials",
			mutate:  func(c *Config) { c.Email.Provider = "ses"; c.Email.AWSAccessKey = "" },
			wantErr: "AWS_ACCESS_KEY_ID",
		},
		{
			name:    "Unknown provider",
			mutate:  func(c *Config) { c.Email.Provider = "pigeon" },
			wantErr: `unknown EMAIL_PROVIDER "pigeon"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{Environment: "development"},
				Database: DatabaseConfig{URL: "postgres://localhost/store"},
				Auth:     AuthConfig{JWTSecret: "secret"},
				Email: EmailConfig{
					Provider:     "log",
					AWSAccessKey: "key",
					AWSSecretKey: "secret",
					SMTPHost:     "smtp.example.com",
					SMTPUser:     "mailer",
				},
			}
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
