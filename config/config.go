package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// MinJWTSecretLength is the minimum required length for the token signing secret in production
	MinJWTSecretLength = 32
	// DefaultTimezone is the organization's local timezone used for calendar-day rules
	DefaultTimezone = "Europe/Istanbul"
)

type Config struct {
	ServerPort  string
	Environment string
	// Database
	DBDriver         string // sqlite, libsql, postgres
	DBPath           string
	DatabaseURL      string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Uploads
	UploadDir     string
	MaxUploadSize int64
	// Tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration
	// Workflow
	Timezone          string
	Location          *time.Location
	DailyRequestLimit int
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Other
	AllowedOrigins []string
	AppURL         string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Attachment sweep job
	AttachmentSweepSchedule string
	AttachmentSweepGrace    time.Duration
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	environment := v.GetString("ENVIRONMENT")
	jwtSecret := v.GetString("JWT_SECRET")

	if err := ValidateJWTSecret(jwtSecret, environment); err != nil {
		log.Fatalf("[CRITICAL] %v. Generate a secure random secret with: openssl rand -base64 32", err)
	}

	// In development, generate a secure secret if none provided
	if jwtSecret == "" && environment != "production" {
		jwtSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary JWT secret for development. Set JWT_SECRET env var for persistence.")
	}

	timezone := v.GetString("ORG_TIMEZONE")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("[WARNING] Unknown ORG_TIMEZONE %q, falling back to %s", timezone, DefaultTimezone)
		timezone = DefaultTimezone
		location, _ = time.LoadLocation(DefaultTimezone)
	}

	return &Config{
		ServerPort:              v.GetString("SERVER_PORT"),
		Environment:             environment,
		DBDriver:                strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:                  v.GetString("DB_PATH"),
		DatabaseURL:             v.GetString("DATABASE_URL"),
		TursoDatabaseURL:        v.GetString("TURSO_DATABASE_URL"),
		TursoAuthToken:          v.GetString("TURSO_AUTH_TOKEN"),
		UploadDir:               v.GetString("UPLOAD_DIR"),
		MaxUploadSize:           v.GetInt64("MAX_UPLOAD_SIZE"),
		JWTSecret:               jwtSecret,
		JWTIssuer:               v.GetString("JWT_ISSUER"),
		JWTAudience:             v.GetString("JWT_AUDIENCE"),
		JWTTTL:                  v.GetDuration("JWT_TTL"),
		Timezone:                timezone,
		Location:                location,
		DailyRequestLimit:       v.GetInt("DAILY_REQUEST_LIMIT"),
		ResendAPIKey:            v.GetString("RESEND_API_KEY"),
		EmailFrom:               v.GetString("EMAIL_FROM"),
		EmailFromName:           v.GetString("EMAIL_FROM_NAME"),
		EmailTestMode:           v.GetBool("EMAIL_TEST_MODE"), // Default true for safety
		AllowedOrigins:          strings.Split(v.GetString("ALLOWED_ORIGINS"), ","),
		AppURL:                  v.GetString("APP_URL"),
		R2AccountID:             v.GetString("R2_ACCOUNT_ID"),
		R2AccessKeyID:           v.GetString("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:       v.GetString("R2_SECRET_ACCESS_KEY"),
		R2BucketName:            v.GetString("R2_BUCKET_NAME"),
		R2PublicURL:             v.GetString("R2_PUBLIC_URL"),
		AttachmentSweepSchedule: v.GetString("ATTACHMENT_SWEEP_SCHEDULE"),
		AttachmentSweepGrace:    v.GetDuration("ATTACHMENT_SWEEP_GRACE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "db/app.db")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024)
	v.SetDefault("JWT_ISSUER", "court-transfer-api")
	v.SetDefault("JWT_AUDIENCE", "court-transfer-console")
	v.SetDefault("JWT_TTL", "8h")
	v.SetDefault("ORG_TIMEZONE", DefaultTimezone)
	v.SetDefault("DAILY_REQUEST_LIMIT", 3)
	v.SetDefault("EMAIL_FROM", "noreply@court-transfer.local")
	v.SetDefault("EMAIL_FROM_NAME", "Court Transfer Office")
	v.SetDefault("EMAIL_TEST_MODE", true)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("APP_URL", "http://localhost:5173")
	v.SetDefault("ATTACHMENT_SWEEP_SCHEDULE", "@hourly")
	v.SetDefault("ATTACHMENT_SWEEP_GRACE", "1h")
}

var (
	// ErrInsecureJWTSecret is returned in production for empty or well-known secrets
	ErrInsecureJWTSecret = errors.New("JWT_SECRET is set to an insecure default value")
	// ErrShortJWTSecret is returned in production for secrets under MinJWTSecretLength
	ErrShortJWTSecret = errors.New("JWT_SECRET is too short")
)

// ValidateJWTSecret validates the token signing secret meets security requirements
// In production, it must be at least 32 bytes and not a known insecure default
func ValidateJWTSecret(secret string, environment string) error {
	// Known insecure defaults that must be rejected
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				return ErrInsecureJWTSecret
			}
			if secret != "" {
				log.Printf("[WARNING] JWT_SECRET is set to an insecure default value. This is acceptable only in development.")
			}
			return nil
		}
	}

	if environment == "production" && len(secret) < MinJWTSecretLength {
		return fmt.Errorf("%w: must be at least %d characters in production (current: %d)", ErrShortJWTSecret, MinJWTSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
// This is used only for development when no secret is provided
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
