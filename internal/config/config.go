package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"agroledger/internal/logger"
)

type Config struct {
	// Snapshot storage
	StoreURL string // gocloud blob URL; empty selects DataDir
	DataDir  string

	// Dashboard
	LowStockThreshold decimal.Decimal

	// Google Sheets export
	GoogleSheetURL string

	// Document AI supplier invoice scanning
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	threshold, err := decimal.NewFromString(getEnv("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: LOW_STOCK_THRESHOLD: %w", err)
	}

	config := &Config{
		StoreURL:              getEnv("STORE_URL", ""),
		DataDir:               getEnv("DATA_DIR", "./data"),
		LowStockThreshold:     threshold,
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default is the configuration used when the environment cannot be read.
func Default() *Config {
	return &Config{
		DataDir:             "./data",
		LowStockThreshold:   decimal.NewFromInt(10),
		GoogleCloudLocation: "us",
		LogLevel:            "info",
		LogFormat:           "console",
		LogTimeFormat:       time.RFC3339,
		LogOutput:           "stderr",
	}
}

func (c *Config) validate() error {
	if c.StoreURL == "" && c.DataDir == "" {
		return fmt.Errorf("either STORE_URL or DATA_DIR is required")
	}
	if c.LowStockThreshold.IsNegative() {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
