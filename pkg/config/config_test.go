package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTokenLifespan)
	assert.Equal(t, "log", cfg.MailProvider)
	assert.True(t, cfg.SeedDemoUsers, "development seeds demo users by default")
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("RESET_TOKEN_TTL", "30m")
	t.Setenv("JWT_TOKEN_LIFESPAN_HOURS", "2")
	t.Setenv("SEED_DEMO_USERS", "false")
	t.Setenv("FRONTEND_BASE_URL", "https://app.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.Equal(t, 2*time.Hour, cfg.JWTTokenLifespan)
	assert.False(t, cfg.SeedDemoUsers)
	assert.Equal(t, "https://app.example.com", cfg.FrontendBaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("RESET_TOKEN_TTL", "soon")
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("DB_SSL_ENABLE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.EnableDBSSL)
}

func TestValidate(t *testing.T) {
	base := func() *AppConfig {
		return &AppConfig{
			Environment:   EnvDevelopment,
			DBDriver:      "postgres",
			MailProvider:  "log",
			JWTSecret:     "0123456789abcdef0123456789abcdef",
			ResetTokenTTL: time.Hour,
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.MailProvider = "ses"
	assert.Error(t, c.Validate(), "ses without region")

	c = base()
	c.MailProvider = "smtp"
	c.SMTPHost = "smtp.example.com"
	assert.NoError(t, c.Validate())

	c = base()
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = base()
	c.Environment = EnvProduction
	c.SeedDemoUsers = true
	assert.Error(t, c.Validate(), "demo users must never be seeded in production")

	c = base()
	c.Environment = EnvProduction
	assert.Error(t, c.Validate(), "log mail provider would write reset links to the logs")

	c = base()
	c.Environment = EnvProduction
	c.MailProvider = "smtp"
	c.SMTPHost = "smtp.example.com"
	assert.NoError(t, c.Validate())
}

func TestLoad_ProductionRequiresRealMailProvider(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef01234567")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_PROVIDER")

	t.Setenv("MAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "smtp", cfg.MailProvider)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &AppConfig{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", EnableDBSSL: true}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=require TimeZone=UTC", cfg.PostgresDSN())
}
