package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Email     EmailConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Affiliate AffiliateConfig
}

type ServerConfig struct {
	Port        string
	BaseURL     string
	Environment string
	// ClickWorkers is the number of goroutines persisting redirect clicks.
	ClickWorkers int
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
}

// EmailConfig selects the outbound mail transport.
// Provider is one of "ses", "smtp" or "log".
type EmailConfig struct {
	Provider     string
	From         string
	SESRegion    string
	AWSAccessKey string
	AWSSecretKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
}

type StorageConfig struct {
	Bucket        string
	Region        string
	PublicBaseURL string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type AffiliateConfig struct {
	DefaultTag      string
	RevenuePerClick float64
}

// Load reads configuration from the environment, loading .env first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenvOrDefault("PORT", "8080"),
			BaseURL:      strings.TrimRight(getenvOrDefault("SITE_URL", "http://localhost:8080"), "/"),
			Environment:  getenvOrDefault("APP_ENV", "development"),
			ClickWorkers: getenvInt("CLICK_WORKERS", 4),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("AUTH_SECRET"),
			TokenTTL:   time.Duration(getenvInt("AUTH_TOKEN_TTL_HOURS", 24)) * time.Hour,
			CookieName: getenvOrDefault("AUTH_COOKIE_NAME", "storefront_session"),
		},
		Email: EmailConfig{
			Provider:     strings.ToLower(getenvOrDefault("EMAIL_PROVIDER", "log")),
			From:         getenvOrDefault("EMAIL_FROM", "Your Store <newsletter@yourdomain.com>"),
			SESRegion:    getenvOrDefault("AWS_SES_REGION", getenvOrDefault("AWS_REGION", "us-east-1")),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPass:     os.Getenv("SMTP_PASS"),
		},
		Storage: StorageConfig{
			Bucket:        os.Getenv("AWS_S3_BUCKET"),
			Region:        getenvOrDefault("AWS_REGION", "us-east-1"),
			PublicBaseURL: strings.TrimRight(os.Getenv("MEDIA_BASE_URL"), "/"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Affiliate: AffiliateConfig{
			DefaultTag:      os.Getenv("AMAZON_AFFILIATE_TAG"),
			RevenuePerClick: getenvFloat("REVENUE_PER_CLICK", 1.0),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate reports missing settings. Secrets have no defaults, so production
// refuses to start without them.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.JWTSecret == "" && c.IsProduction() {
		errs = append(errs, errors.New("AUTH_SECRET is required in production"))
	}
	switch c.Email.Provider {
	case "ses":
		if c.Email.AWSAccessKey == "" || c.Email.AWSSecretKey == "" {
			errs = append(errs, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required for EMAIL_PROVIDER=ses"))
		}
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.SMTPUser == "" {
			errs = append(errs, errors.New("SMTP_HOST and SMTP_USER are required for EMAIL_PROVIDER=smtp"))
		}
	case "log":
		if c.IsProduction() {
			errs = append(errs, errors.New("EMAIL_PROVIDER=log is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.Email.Provider))
	}
	return errors.Join(errs...)
}

// getenvOrDefault returns the environment variable value if set, otherwise returns def
func getenvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
