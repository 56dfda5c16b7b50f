// Package config loads runtime settings from the environment (and a .env file
// when present).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	UploadDir      string
	OutputDir      string
	MaxUploadSize  int64
	FileTTL        time.Duration
	ConvertTimeout time.Duration
	RateLimit      float64
	RateBurst      int

	LogLevel  string
	LogFormat string
	LogFile   string

	// Optional explicit paths for external tools; empty means search PATH.
	SofficePath     string
	RembgPath       string
	GhostscriptPath string
}

// Load reads .env (if any) and the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() *Config {
	return &Config{
		Port:           getEnvIntOrDefault("PORT", 8080),
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		OutputDir:      getEnvOrDefault("OUTPUT_DIR", "output"),
		MaxUploadSize:  getEnvInt64OrDefault("MAX_UPLOAD_SIZE", 20*1024*1024),
		FileTTL:        getEnvDurationOrDefault("FILE_TTL", 30*time.Minute),
		ConvertTimeout: getEnvDurationOrDefault("CONVERT_TIMEOUT", 2*time.Minute),
		RateLimit:      getEnvFloatOrDefault("RATE_LIMIT", 5),
		RateBurst:      getEnvIntOrDefault("RATE_BURST", 10),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
		LogFile:   os.Getenv("LOG_FILE"),

		SofficePath:     os.Getenv("SOFFICE_PATH"),
		RembgPath:       os.Getenv("REMBG_PATH"),
		GhostscriptPath: os.Getenv("GHOSTSCRIPT_PATH"),
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.UploadDir == "" || c.OutputDir == "" {
		return fmt.Errorf("upload and output directories must be set")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit and burst must be positive")
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
