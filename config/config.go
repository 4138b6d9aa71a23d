package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinAdminPasswordLength mirrors the registration password rule
	MinAdminPasswordLength = 6
	// DefaultMaxUploadBytes caps the uploaded content of a single request (16 MiB)
	DefaultMaxUploadBytes = 16 * 1024 * 1024
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	LogLevel    string
	UploadDir   string
	// MaxUploadBytes is the total upload size allowed per request
	MaxUploadBytes int64
	// DefaultAdminPassword seeds the "admin" account on first start
	DefaultAdminPassword string
	// Turso (remote libSQL); empty URL means local sqlite at DBPath
	TursoDatabaseURL string
	TursoAuthToken   string
	// Cloudflare R2 Storage; empty values mean local filesystem at UploadDir
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailTestMode bool // When true, emails are logged instead of sent
	NotifyEmail   string
	// PDF reports
	ChromePath string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	adminPassword := getEnv("DEFAULT_ADMIN_PASSWORD", "password")

	if err := ValidateAdminPassword(adminPassword, environment); err != nil {
		log.Fatalf("[CRITICAL] %v", err)
	}

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DBPath:               getEnv("DB_PATH", "db/cases.db"),
		Environment:          environment,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		UploadDir:            getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:       getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		DefaultAdminPassword: adminPassword,
		TursoDatabaseURL:     getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:       os.Getenv("TURSO_AUTH_TOKEN"),
		R2AccountID:          getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:        getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         getEnv("R2_BUCKET_NAME", ""),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		EmailFrom:            getEnv("EMAIL_FROM", "Case Docket <noreply@casedocket.local>"),
		EmailTestMode:        getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		NotifyEmail:          getEnv("NOTIFY_EMAIL", ""),
		ChromePath:           getEnv("CHROME_PATH", ""),
	}
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesR2 reports whether all Cloudflare R2 settings are present
func (c *Config) UsesR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("[WARNING] Invalid value for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// ValidateAdminPassword checks the password used to seed the "admin" account
func ValidateAdminPassword(password string, environment string) error {
	if len(password) < MinAdminPasswordLength {
		return fmt.Errorf("DEFAULT_ADMIN_PASSWORD must be at least %d characters", MinAdminPasswordLength)
	}
	if password == "password" {
		if environment == "production" {
			log.Printf("[CRITICAL] DEFAULT_ADMIN_PASSWORD is the built-in default in production. Change the admin password immediately.")
		} else {
			log.Printf("[WARNING] DEFAULT_ADMIN_PASSWORD is the built-in default. Change the admin password after first login.")
		}
	}
	return nil
}
