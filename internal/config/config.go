package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds server configuration
type Config struct {
	Port            int           // Port to listen on
	Secret          string        // Secret key verifying admin JWTs
	Env             string        // Environment (development | production)
	AWSRegion       string        // AWS region for DynamoDB and S3
	AWSEndpoint     string        // Optional base endpoint (MinIO, LocalStack)
	AWSAccessKey    string        // Optional static credentials
	AWSSecretKey    string        //
	S3Bucket        string        // Bucket presigned URLs are issued for
	FilesTable      string        // DynamoDB table holding file metadata
	LogsTable       string        // DynamoDB table holding activity logs
	PresignExpiry   time.Duration // Lifetime of issued presigned URLs
	GeoIPDBPath     string        // Optional GeoLite2 database for log enrichment
	DefaultPageSize int32         // Page size when the caller supplies none
	MaxPageSize     int32         // Upper bound on caller-supplied limits
}

func (c *Config) Log() {
	log.Info().
		Int("port", c.Port).
		Str("env", c.Env).
		Str("region", c.AWSRegion).
		Str("bucket", c.S3Bucket).
		Str("files_table", c.FilesTable).
		Str("logs_table", c.LogsTable).
		Dur("presign_expiry", c.PresignExpiry).
		Msg("server configuration")
}

// NewConfig creates a server configuration from environment variables
func NewConfig() (*Config, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		log.Error().Err(err).Msg("invalid PORT environment variable")
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := os.Getenv("SECRET")
	if secret == "" {
		log.Error().Msg("SECRET environment variable is required")
		return nil, fmt.Errorf("SECRET is required")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "production"
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		return nil, fmt.Errorf("AWS_REGION is required")
	}

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	filesTable := os.Getenv("FILES_TABLE")
	if filesTable == "" {
		return nil, fmt.Errorf("FILES_TABLE is required")
	}

	logsTable := os.Getenv("LOGS_TABLE")
	if logsTable == "" {
		return nil, fmt.Errorf("LOGS_TABLE is required")
	}

	presignExpiryStr := os.Getenv("PRESIGN_EXPIRES_IN")
	if presignExpiryStr == "" {
		presignExpiryStr = "5m"
	}
	presignExpiry, err := time.ParseDuration(presignExpiryStr)
	if err != nil || presignExpiry <= 0 {
		log.Error().Err(err).Msg("invalid PRESIGN_EXPIRES_IN environment variable")
		return nil, fmt.Errorf("invalid PRESIGN_EXPIRES_IN: %w", err)
	}

	return &Config{
		Port:            port,
		Secret:          secret,
		Env:             env,
		AWSRegion:       region,
		AWSEndpoint:     os.Getenv("AWS_ENDPOINT_URL"),
		AWSAccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:        bucket,
		FilesTable:      filesTable,
		LogsTable:       logsTable,
		PresignExpiry:   presignExpiry,
		GeoIPDBPath:     os.Getenv("GEOIP_DB_PATH"),
		DefaultPageSize: 10,
		MaxPageSize:     50,
	}, nil
}
