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

// ErrMissingJWTSecret is returned by Load when no signing key is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	SMTP     SMTPConfig
	S3       S3Config
	Log      LogConfig
}

type ServerConfig struct {
	Port               string
	GinMode            string
	Environment        string
	ExposeErrorDetails bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// LogBodies lets the log-only sender print message text. Development only.
	LogBodies bool
}

// Enabled reports whether outgoing mail should go through a real SMTP server.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type LogConfig struct {
	Level  string
	Format string
}

const defaultTokenExpiry = 7 * 24 * time.Hour

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	defaultLevel := "info"
	if environment == "development" {
		defaultLevel = "debug"
	}

	expiresIn, err := ParseDuration(getEnv("JWT_EXPIRES_IN", "7d"))
	if err != nil {
		log.Printf("Invalid JWT_EXPIRES_IN, using default %s: %v", defaultTokenExpiry, err)
		expiresIn = defaultTokenExpiry
	}

	config := &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "5000"),
			GinMode:            getEnv("GIN_MODE", "debug"),
			Environment:        environment,
			ExposeErrorDetails: getBool("EXPOSE_ERROR_DETAILS", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "meditrack"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			ExpiresIn: expiresIn,
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),

			LogBodies: environment == "development",
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-south-1"),
			Bucket:          os.Getenv("AWS_S3_BUCKET"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			BaseURL:         os.Getenv("AWS_S3_BASE_URL"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", defaultLevel),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// ParseDuration accepts anything time.ParseDuration does plus a whole-day
// form such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean %s=%s, using default %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
