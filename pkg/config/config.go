// Package config loads host configuration from the environment and funding
// profiles from YAML.
package config

import "os"

// Config holds host configuration for an embedded engine.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	LogLevel      string
	OTLPEndpoint  string
	ReceiptDBPath string
}

// Load reads configuration from environment variables.
func Load() *Config {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://drip@localhost:5432/drip?sslmode=disable"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	receiptDB := os.Getenv("RECEIPT_DB_PATH")
	if receiptDB == "" {
		receiptDB = "drip-receipts.db"
	}

	return &Config{
		DatabaseURL:   dbURL,
		RedisAddr:     redisAddr,
		LogLevel:      logLevel,
		OTLPEndpoint:  otlpEndpoint,
		ReceiptDBPath: receiptDB,
	}
}
