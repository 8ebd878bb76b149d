package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal API.
type Config struct {
	// Server configuration
	Port         string
	AppEnv       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int

	// Database configuration
	DatabaseURL     string
	DatabaseTimeout time.Duration

	// Admin access
	AdminPassword string

	// Facebook Graph API (scheduled publishing)
	GraphAPIBaseURL string
	PageID          string
	PageToken       string
	PublishTimeout  time.Duration

	// Upload pipeline
	UploadMaxRetries int
	MaxVideoSize     int64
	MaxImageSize     int64

	// Connection type label used for bandwidth estimation when no
	// client-side connection metadata is available.
	ConnectionType string

	// Archive retention
	PurgeAfterDays int

	// Worker pool configuration (background blob cleanup)
	MaxWorkers          int
	QueueSizeMultiplier int

	// Production settings
	EnableRequestID bool
	EnableCORS      bool
	TrustedProxies  []string

	// Monitoring settings
	EnableStatsEndpoint bool
	EnableSwagger       bool

	// Logging configuration
	LogUploads bool

	// Blob storage configuration
	Blob *BlobConfiguration
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file (optional)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found or couldn't be loaded: %v", err)
	} else {
		log.Println("Loaded configuration from .env file")
	}

	return &Config{
		// Server configuration
		Port:         getEnv("PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "development"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Minute),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 10*time.Minute),
		IdleTimeout:  getDuration("IDLE_TIMEOUT", 5*time.Minute),
		BodyLimit:    int(getInt64("BODY_LIMIT", 5*1024*1024*1024+64*1024*1024)), // 5GB video plus headroom

		// Database
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseTimeout: getDuration("DATABASE_TIMEOUT", 30*time.Second),

		// Admin access
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		// Facebook Graph API
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v17.0"),
		PageID:          getEnv("FB_PAGE_ID", ""),
		PageToken:       getEnv("FB_PAGE_TOKEN", ""),
		PublishTimeout:  getDuration("PUBLISH_TIMEOUT", 2*time.Minute),

		// Upload pipeline
		UploadMaxRetries: getInt("UPLOAD_MAX_RETRIES", 3),
		MaxVideoSize:     getInt64("MAX_VIDEO_SIZE", 5*1024*1024*1024), // 5GB
		MaxImageSize:     getInt64("MAX_IMAGE_SIZE", 100*1024*1024),    // 100MB

		// Network estimation fallback
		ConnectionType: getEnv("CONNECTION_TYPE", ""),

		// Archive retention
		PurgeAfterDays: getInt("PURGE_AFTER_DAYS", 7),

		// Worker pool
		MaxWorkers:          getWorkerCount(),
		QueueSizeMultiplier: getInt("QUEUE_SIZE_MULTIPLIER", 10),

		// Production settings
		EnableRequestID: getBool("ENABLE_REQUEST_ID", true),
		EnableCORS:      getBool("ENABLE_CORS", true),
		TrustedProxies:  getStringSlice("TRUSTED_PROXIES", []string{"127.0.0.1", "::1"}),

		// Monitoring settings
		EnableStatsEndpoint: getBool("ENABLE_STATS_ENDPOINT", true),
		EnableSwagger:       getBool("ENABLE_SWAGGER", true),

		// Logging
		LogUploads: getBool("LOG_UPLOADS", true),

		// Blob storage
		Blob: LoadBlobConfig(),
	}
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Warning: Invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Warning: Invalid int64 value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("Warning: Invalid boolean value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("Warning: Invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

func getStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, len(parts))
		for i, part := range parts {
			result[i] = strings.TrimSpace(part)
		}
		return result
	}
	return defaultValue
}

func getWorkerCount() int {
	if value := os.Getenv("MAX_WORKERS"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}

	// Blob cleanup is I/O bound, so a small multiple of the CPU count is plenty.
	cpuCount := runtime.NumCPU()
	if cpuCount > 8 {
		return 16
	}
	return cpuCount * 2
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PublishConfigured reports whether the Facebook page credentials are set.
func (c *Config) PublishConfigured() bool {
	return c.PageID != "" && c.PageToken != ""
}

// PrintConfig logs the current configuration (without sensitive data).
func (c *Config) PrintConfig() {
	log.Println("===========================================")
	log.Println("Content Portal API Configuration")
	log.Println("===========================================")
	log.Printf("Environment:      %s", c.AppEnv)
	log.Printf("Port:             %s", c.Port)
	log.Printf("Body Limit:       %dMB", c.BodyLimit/1024/1024)
	log.Printf("Upload Retries:   %d", c.UploadMaxRetries)
	log.Printf("Max Video Size:   %dMB", c.MaxVideoSize/1024/1024)
	log.Printf("Max Image Size:   %dMB", c.MaxImageSize/1024/1024)
	log.Printf("Purge After:      %d days", c.PurgeAfterDays)
	log.Printf("Workers:          %d (CPU: %d)", c.MaxWorkers, runtime.NumCPU())
	log.Printf("Stats Endpoint:   %t", c.EnableStatsEndpoint)
	log.Printf("Swagger:          %t", c.EnableSwagger)
	log.Printf("Database set:     %t", c.DatabaseURL != "")
	log.Printf("Publishing ready: %t", c.PublishConfigured())
	log.Println("===========================================")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.UploadMaxRetries <= 0 {
		log.Printf("Warning: UPLOAD_MAX_RETRIES is 0 or negative, setting to default: 3")
		c.UploadMaxRetries = 3
	}

	if c.PurgeAfterDays <= 0 {
		log.Printf("Warning: PURGE_AFTER_DAYS is 0 or negative, setting to default: 7")
		c.PurgeAfterDays = 7
	}

	if c.MaxWorkers <= 0 {
		log.Printf("Warning: MAX_WORKERS is 0 or negative, auto-setting to %d", runtime.NumCPU()*2)
		c.MaxWorkers = runtime.NumCPU() * 2
	}

	if c.QueueSizeMultiplier <= 0 {
		c.QueueSizeMultiplier = 10
	}

	return nil
}
