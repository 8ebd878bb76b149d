package config

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"content-portal-api/internal/blob"
)

// BlobConfiguration holds all blob-storage-related settings.
type BlobConfiguration struct {
	// Provider configuration
	Backend        blob.BackendType `json:"backend"`
	Endpoint       string           `json:"endpoint"`
	PublicEndpoint string           `json:"public_endpoint"`
	Region         string           `json:"region"`
	Bucket         string           `json:"bucket"`
	AccessKey      string           `json:"access_key"`
	SecretKey      string           `json:"secret_key"`

	// Connection settings
	UseSSL    bool `json:"use_ssl"`
	PathStyle bool `json:"path_style"`

	// Upload behavior
	PublicRead bool `json:"public_read"`

	// Performance settings
	MultipartThreshold int64         `json:"multipart_threshold"`
	PartSize           int64         `json:"part_size"`
	StoreTimeout       time.Duration `json:"store_timeout"`
	RetryCount         int           `json:"retry_count"`

	// Key generation settings
	KeyPrefix       string `json:"key_prefix"`
	ThumbnailPrefix string `json:"thumbnail_prefix"`
}

// LoadBlobConfig loads blob storage configuration from environment variables.
func LoadBlobConfig() *BlobConfiguration {
	config := &BlobConfiguration{
		Backend:            blob.BackendType(getEnv("STORAGE_BACKEND", "minio")),
		Endpoint:           getEnv("STORAGE_ENDPOINT", ""),
		PublicEndpoint:     getEnv("STORAGE_PUBLIC_ENDPOINT", ""),
		Region:             getEnv("STORAGE_REGION", "us-east-1"),
		Bucket:             getEnv("STORAGE_BUCKET", ""),
		AccessKey:          getEnv("STORAGE_ACCESS_KEY", ""),
		SecretKey:          getEnv("STORAGE_SECRET_KEY", ""),
		UseSSL:             getBool("STORAGE_USE_SSL", true),
		PathStyle:          getBool("STORAGE_PATH_STYLE", false),
		PublicRead:         getBool("STORAGE_PUBLIC_READ", true),
		MultipartThreshold: getInt64("STORAGE_MULTIPART_THRESHOLD", 50*1024*1024), // 50MB
		PartSize:           getInt64("STORAGE_PART_SIZE", 10*1024*1024),           // 10MB
		StoreTimeout:       getDuration("STORAGE_TIMEOUT", time.Hour),
		RetryCount:         getInt("STORAGE_RETRY_COUNT", 2),
		KeyPrefix:          getEnv("STORAGE_KEY_PREFIX", "uploads/"),
		ThumbnailPrefix:    getEnv("STORAGE_THUMBNAIL_PREFIX", "thumbnails/"),
	}

	config.applyBackendDefaults()

	return config
}

// applyBackendDefaults sets backend-specific default values.
func (c *BlobConfiguration) applyBackendDefaults() {
	switch c.Backend {
	case blob.BackendAWS:
		if c.Endpoint == "" {
			c.Endpoint = "https://s3.amazonaws.com"
		}
		c.PathStyle = false // AWS S3 prefers virtual-hosted style

	case blob.BackendMinIO:
		c.PathStyle = true // MinIO typically uses path-style
		if c.PublicEndpoint == "" && c.Endpoint != "" {
			c.PublicEndpoint = c.Endpoint
		}
	}
}

// Validate checks if the blob configuration is valid.
func (c *BlobConfiguration) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("STORAGE_ACCESS_KEY is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("STORAGE_SECRET_KEY is required")
	}
	if c.Backend == blob.BackendMinIO && c.Endpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT is required for the minio backend")
	}

	valid := false
	for _, backend := range blob.SupportedBackends() {
		if c.Backend == backend {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid STORAGE_BACKEND: %s (supported: %v)", c.Backend, blob.SupportedBackends())
	}

	return nil
}

// ToProviderConfig converts the configuration to a blob.Config.
func (c *BlobConfiguration) ToProviderConfig() *blob.Config {
	return &blob.Config{
		Backend:            c.Backend,
		Endpoint:           c.Endpoint,
		PublicEndpoint:     c.PublicEndpoint,
		Region:             c.Region,
		Bucket:             c.Bucket,
		AccessKey:          c.AccessKey,
		SecretKey:          c.SecretKey,
		UseSSL:             c.UseSSL,
		PathStyle:          c.PathStyle,
		PublicRead:         c.PublicRead,
		MultipartThreshold: c.MultipartThreshold,
		PartSize:           c.PartSize,
		StoreTimeout:       c.StoreTimeout,
		RetryCount:         c.RetryCount,
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// ObjectKey builds the storage key for an uploaded file:
// {prefix}{editorID}/{unixMillis}-{sanitizedFilename}.
func (c *BlobConfiguration) ObjectKey(editorID string, filename string, now time.Time) string {
	return buildKey(c.KeyPrefix, editorID, filename, now)
}

// ThumbnailKey builds the storage key for a video thumbnail.
func (c *BlobConfiguration) ThumbnailKey(editorID string, filename string, now time.Time) string {
	return buildKey(c.ThumbnailPrefix, editorID, filename, now)
}

func buildKey(prefix, editorID, filename string, now time.Time) string {
	safeName := unsafeKeyChars.ReplaceAllString(filename, "_")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s%s/%d-%s", prefix, editorID, now.UnixMilli(), safeName)
}

// PrintBlobConfig logs the blob configuration (without secrets).
func (c *BlobConfiguration) PrintBlobConfig() {
	log.Println("Blob Storage Configuration:")
	log.Printf("  Backend:         %s", c.Backend)
	log.Printf("  Endpoint:        %s", c.Endpoint)
	log.Printf("  Region:          %s", c.Region)
	log.Printf("  Bucket:          %s", c.Bucket)
	log.Printf("  Path Style:      %t", c.PathStyle)
	log.Printf("  Public Read:     %t", c.PublicRead)
	log.Printf("  Part Size:       %dMB", c.PartSize/1024/1024)
	log.Printf("  Store Timeout:   %s", c.StoreTimeout)
	log.Printf("  Key Prefix:      %s", c.KeyPrefix)
}
