package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTSecret string
	JWTExpiry time.Duration

	OTPTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each collection.
type DynamoTables struct {
	Books          string
	Chapters       string
	ChapterDetails string
	Wishlists      string
	Users          string
	OTPs           string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Books:          getEnv("DYNAMO_TABLE_BOOKS", "book_list"),
			Chapters:       getEnv("DYNAMO_TABLE_CHAPTERS", "chapter_list"),
			ChapterDetails: getEnv("DYNAMO_TABLE_CHAPTER_DETAILS", "chapter_details"),
			Wishlists:      getEnv("DYNAMO_TABLE_WISHLISTS", "wishlists"),
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			OTPs:           getEnv("DYNAMO_TABLE_OTPS", "otps"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "aarsha-covers"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", time.Hour),

		OTPTTL: getEnvDuration("OTP_TTL", 5*time.Minute),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPTimeout:  getEnvDuration("SMTP_TIMEOUT", 10*time.Second),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
