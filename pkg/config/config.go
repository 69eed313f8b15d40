package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Port        string
	Environment string // "development", "test", "production"
	LogLevel    string

	DBDriver    string // "postgres" or "sqlite"
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	EnableDBSSL bool
	SQLitePath  string

	JWTSecret        string
	JWTTokenLifespan time.Duration
	CookieSecure     bool

	ResetTokenTTL   time.Duration
	FrontendBaseURL string

	MailProvider string // "ses", "smtp" or "log"
	MailFrom     string
	AWSRegion    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	ForgotPasswordLimit  int
	ForgotPasswordWindow time.Duration

	SeedDemoUsers bool
}

// IsProduction reports whether the configuration targets production data.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *AppConfig) PostgresDSN() string {
	sslMode := "disable"
	if c.EnableDBSSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// Load reads .env (when present) and the environment into an AppConfig.
func Load() (*AppConfig, error) {
	// .env is a local development convenience, production sets real env vars
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("Warning: could not load .env file:", err)
	}

	cfg := &AppConfig{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", EnvDevelopment))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "template_user")
	cfg.DBPassword = getEnv("DB_PASSWORD", "template_pass")
	cfg.DBName = getEnv("DB_NAME", "template_db")
	cfg.EnableDBSSL = getEnvAsBool("DB_SSL_ENABLE", false)
	cfg.SQLitePath = getEnv("SQLITE_PATH", "template.db")

	cfg.JWTSecret = getEnv("JWT_SECRET_KEY", "a_very_secure_secret_key_please_change_me_32_chars_long")
	jwtLifespanHours, err := strconv.Atoi(getEnv("JWT_TOKEN_LIFESPAN_HOURS", "24"))
	if err != nil || jwtLifespanHours <= 0 {
		log.Printf("Warning: invalid JWT_TOKEN_LIFESPAN_HOURS, using default 24h")
		jwtLifespanHours = 24
	}
	cfg.JWTTokenLifespan = time.Duration(jwtLifespanHours) * time.Hour
	cfg.CookieSecure = getEnvAsBool("COOKIE_SECURE", cfg.Environment == EnvProduction)

	cfg.ResetTokenTTL = getEnvAsDuration("RESET_TOKEN_TTL", time.Hour)
	cfg.FrontendBaseURL = strings.TrimSuffix(getEnv("FRONTEND_BASE_URL", "http://localhost:8080"), "/")

	cfg.MailProvider = strings.ToLower(getEnv("MAIL_PROVIDER", "log"))
	cfg.MailFrom = getEnv("MAIL_FROM", "no-reply@localhost")
	cfg.AWSRegion = getEnv("AWS_REGION", "")
	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvAsInt("REDIS_DB", 0)
	cfg.ForgotPasswordLimit = getEnvAsInt("FORGOT_PASSWORD_LIMIT", 5)
	cfg.ForgotPasswordWindow = getEnvAsDuration("FORGOT_PASSWORD_WINDOW", 15*time.Minute)

	cfg.SeedDemoUsers = getEnvAsBool("SEED_DEMO_USERS", cfg.Environment == EnvDevelopment)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default its way out of.
func (c *AppConfig) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("invalid ENVIRONMENT %q", c.Environment)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q, expected postgres or sqlite", c.DBDriver)
	}
	switch c.MailProvider {
	case "ses":
		if c.AWSRegion == "" {
			return fmt.Errorf("MAIL_PROVIDER=ses requires AWS_REGION")
		}
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("MAIL_PROVIDER=smtp requires SMTP_HOST")
		}
	case "log":
		if c.IsProduction() {
			return fmt.Errorf("MAIL_PROVIDER=log is not allowed in production, configure ses or smtp")
		}
	default:
		return fmt.Errorf("invalid MAIL_PROVIDER %q", c.MailProvider)
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}
	if c.IsProduction() && c.SeedDemoUsers {
		return fmt.Errorf("SEED_DEMO_USERS must not be enabled in production")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: boolean env var '%s' has invalid value '%s', using default: %t", key, valStr, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsInt(key string, defaultValue int) int {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valInt, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Warning: integer env var '%s' has invalid value '%s', using default: %d", key, valStr, defaultValue)
		return defaultValue
	}
	return valInt
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: duration env var '%s' has invalid value '%s', using default: %s", key, valStr, defaultValue)
		return defaultValue
	}
	return d
}
