package blob

import (
	"context"
	"io"
	"time"
)

// Provider defines the interface for all S3-compatible blob storage backends
// that hold the portal's media files.
type Provider interface {
	// Store writes data from a reader to the specified object key and
	// returns the public URL of the stored object.
	Store(ctx context.Context, key string, reader io.Reader, size int64, opts StoreOptions) (*StoreResult, error)

	// PublicURL returns the public URL for accessing a stored object.
	PublicURL(key string) string

	// HealthCheck verifies the backend connection and configuration.
	HealthCheck(ctx context.Context) error

	// Delete removes an object from storage.
	Delete(ctx context.Context, key string) error

	// Stat retrieves metadata about a stored object.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
}

// StoreOptions contains options for store operations.
type StoreOptions struct {
	// ContentType specifies the MIME type of the object.
	ContentType string

	// Metadata contains user-defined metadata key-value pairs.
	Metadata map[string]string

	// Public determines if the object should be publicly readable.
	Public bool

	// ProgressCallback is invoked zero or more times during the transfer
	// with the cumulative bytes transferred and the total size.
	ProgressCallback func(loaded, total int64)
}

// StoreResult contains information about a successfully stored object.
type StoreResult struct {
	// Key is the object key in the bucket.
	Key string `json:"key"`

	// PublicURL is the public URL to access the object.
	PublicURL string `json:"url"`

	// Size is the stored object size in bytes.
	Size int64 `json:"size"`

	// ETag is the entity tag of the stored object.
	ETag string `json:"etag"`

	// Backend identifies which storage backend was used.
	Backend string `json:"backend"`

	// ProcessingTime tracks how long the transfer took.
	ProcessingTime time.Duration `json:"processing_time"`
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	ContentType  string            `json:"content_type"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata"`
}

// BackendType represents the supported storage backend types.
type BackendType string

const (
	BackendAWS   BackendType = "aws"
	BackendMinIO BackendType = "minio"
)

// Config contains configuration for blob storage backends.
type Config struct {
	// Backend type (aws, minio).
	Backend BackendType `json:"backend"`

	// Endpoint URL (e.g. https://s3.amazonaws.com).
	Endpoint string `json:"endpoint"`

	// PublicEndpoint for generating public URLs.
	PublicEndpoint string `json:"public_endpoint"`

	// Region for AWS and compatible services.
	Region string `json:"region"`

	// Bucket name.
	Bucket string `json:"bucket"`

	// AccessKey for authentication.
	AccessKey string `json:"access_key"`

	// SecretKey for authentication.
	SecretKey string `json:"secret_key"`

	// UseSSL determines if HTTPS should be used.
	UseSSL bool `json:"use_ssl"`

	// PathStyle forces path-style URLs (for MinIO compatibility).
	PathStyle bool `json:"path_style"`

	// PublicRead makes all stored objects publicly readable.
	PublicRead bool `json:"public_read"`

	// MultipartThreshold in bytes above which the backend switches to a
	// multipart transfer (default: 50MB, matching the portal's direct-upload
	// cutoff).
	MultipartThreshold int64 `json:"multipart_threshold"`

	// PartSize for multipart transfers in bytes (default: 10MB).
	PartSize int64 `json:"part_size"`

	// StoreTimeout for individual store operations.
	StoreTimeout time.Duration `json:"store_timeout"`

	// RetryCount for transient backend failures inside one store call.
	RetryCount int `json:"retry_count"`
}

// Validate checks if the Config is valid and fills in defaults.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return ErrInvalidBackend
	}
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	if c.AccessKey == "" {
		return ErrMissingAccessKey
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}

	if c.MultipartThreshold == 0 {
		c.MultipartThreshold = 50 * 1024 * 1024
	}
	if c.PartSize == 0 {
		c.PartSize = 10 * 1024 * 1024
	}
	if c.StoreTimeout == 0 {
		c.StoreTimeout = time.Hour
	}
	if c.RetryCount == 0 {
		c.RetryCount = 2
	}

	return nil
}

// ObjectURL generates a public URL for the given key.
func (c *Config) ObjectURL(key string) string {
	if c.PublicEndpoint != "" {
		if c.PathStyle {
			return c.PublicEndpoint + "/" + c.Bucket + "/" + key
		}
		return c.PublicEndpoint + "/" + key
	}

	if c.PathStyle {
		return c.Endpoint + "/" + c.Bucket + "/" + key
	}
	return "https://" + c.Bucket + "." + c.Endpoint + "/" + key
}
