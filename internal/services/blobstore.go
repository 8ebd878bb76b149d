package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"content-portal-api/internal/blob"
	"content-portal-api/internal/config"
	"content-portal-api/internal/models"
)

// Allowed MIME types per media category.
var (
	allowedVideoTypes = []string{
		"video/mp4",
		"video/webm",
		"video/quicktime",
		"video/x-msvideo",
		"video/x-matroska",
	}
	allowedImageTypes = []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	}
)

// BlobService manages blob storage operations and provider lifecycle.
type BlobService struct {
	provider blob.Provider
	config   *config.BlobConfiguration

	maxVideoSize int64
	maxImageSize int64
	logEnabled   bool

	stats *BlobStats
}

// BlobStats tracks service statistics.
type BlobStats struct {
	TotalStores      int64         `json:"total_stores"`
	SuccessfulStores int64         `json:"successful_stores"`
	FailedStores     int64         `json:"failed_stores"`
	TotalBytes       int64         `json:"total_bytes"`
	AverageStoreTime time.Duration `json:"average_store_time"`
	LastStore        time.Time     `json:"last_store"`
	mu               sync.RWMutex
}

// NewBlobService creates the blob storage service, constructs the
// configured provider and verifies the connection.
func NewBlobService(cfg *config.BlobConfiguration, maxVideoSize, maxImageSize int64, logEnabled bool) (*BlobService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid blob configuration: %w", err)
	}

	provider, err := blob.NewProvider(cfg.ToProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create blob provider: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := provider.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("blob provider health check failed: %w", err)
	}

	log.Printf("✅ Blob storage initialized with backend: %s", cfg.Backend)
	cfg.PrintBlobConfig()

	return &BlobService{
		provider:     provider,
		config:       cfg,
		maxVideoSize: maxVideoSize,
		maxImageSize: maxImageSize,
		logEnabled:   logEnabled,
		stats:        &BlobStats{},
	}, nil
}

// Store validates the payload against the media policy and writes it.
func (s *BlobService) Store(ctx context.Context, key string, reader io.Reader, size int64, opts blob.StoreOptions) (*blob.StoreResult, error) {
	startTime := time.Now()

	result, err := s.provider.Store(ctx, key, reader, size, opts)
	s.updateStats(startTime, size, err == nil)

	if err != nil {
		if s.logEnabled {
			log.Printf("❌ Blob store failed for key '%s': %v", key, err)
		}
		return nil, err
	}

	if s.logEnabled {
		log.Printf("✅ Blob stored: %s (size: %d bytes, time: %v)", result.Key, result.Size, result.ProcessingTime)
	}
	return result, nil
}

// Policy resolves the upload constraints and destination key for one
// file: size limit and MIME allowlist by media category, key under the
// editor's prefix.
func (s *BlobService) Policy(editorID, filename, mediaType string, thumbnail bool) (*models.UploadPolicyResponse, error) {
	var maxSize int64
	var allowed []string

	switch mediaType {
	case models.MediaTypeVideo:
		maxSize = s.maxVideoSize
		allowed = allowedVideoTypes
	case models.MediaTypeImage:
		maxSize = s.maxImageSize
		allowed = allowedImageTypes
	default:
		return nil, fmt.Errorf("unknown media type: %s", mediaType)
	}

	now := time.Now()
	var key string
	if thumbnail {
		// Thumbnails are always images regardless of the parent media type.
		maxSize = s.maxImageSize
		allowed = allowedImageTypes
		key = s.config.ThumbnailKey(editorID, filename, now)
	} else {
		key = s.config.ObjectKey(editorID, filename, now)
	}

	return &models.UploadPolicyResponse{
		Key:           key,
		PublicURL:     s.provider.PublicURL(key),
		MaxSize:       maxSize,
		AllowedTypes:  allowed,
		MediaCategory: mediaType,
	}, nil
}

// ValidateUpload checks a declared content type and size against the
// media policy.
func (s *BlobService) ValidateUpload(mediaType, contentType string, size int64) error {
	var maxSize int64
	var allowed []string

	switch mediaType {
	case models.MediaTypeVideo:
		maxSize = s.maxVideoSize
		allowed = allowedVideoTypes
	case models.MediaTypeImage:
		maxSize = s.maxImageSize
		allowed = allowedImageTypes
	default:
		return fmt.Errorf("unknown media type: %s", mediaType)
	}

	if size > maxSize {
		return fmt.Errorf("file size %d exceeds the %d byte limit for %s uploads", size, maxSize, mediaType)
	}

	for _, t := range allowed {
		if strings.EqualFold(contentType, t) {
			return nil
		}
	}
	return fmt.Errorf("content type not allowed for %s uploads: %s", mediaType, contentType)
}

// Delete removes an object from storage.
func (s *BlobService) Delete(ctx context.Context, key string) error {
	if err := s.provider.Delete(ctx, key); err != nil {
		if s.logEnabled {
			log.Printf("❌ Blob delete failed for key '%s': %v", key, err)
		}
		return err
	}

	if s.logEnabled {
		log.Printf("🗑️ Blob deleted: %s", key)
	}
	return nil
}

// KeyFromURL recovers the object key from a public URL produced by this
// service. Returns false when the URL does not point into the bucket.
func (s *BlobService) KeyFromURL(url string) (string, bool) {
	if marker := "/" + s.config.Bucket + "/"; strings.Contains(url, marker) {
		return url[strings.Index(url, marker)+len(marker):], true
	}
	for _, prefix := range []string{s.config.KeyPrefix, s.config.ThumbnailPrefix} {
		if prefix == "" {
			continue
		}
		if idx := strings.Index(url, "/"+prefix); idx >= 0 {
			return url[idx+1:], true
		}
	}
	return "", false
}

// HealthCheck verifies the provider connection.
func (s *BlobService) HealthCheck(ctx context.Context) error {
	return s.provider.HealthCheck(ctx)
}

// Stats returns a snapshot of the service statistics.
func (s *BlobService) Stats() models.StorageStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	successRate := 100.0
	if s.stats.TotalStores > 0 {
		successRate = float64(s.stats.SuccessfulStores) / float64(s.stats.TotalStores) * 100.0
	}

	avgTime := "N/A"
	if s.stats.AverageStoreTime > 0 {
		avgTime = s.stats.AverageStoreTime.String()
	}

	return models.StorageStats{
		Enabled:          true,
		Backend:          string(s.config.Backend),
		TotalStores:      s.stats.TotalStores,
		SuccessfulStores: s.stats.SuccessfulStores,
		FailedStores:     s.stats.FailedStores,
		TotalBytes:       s.stats.TotalBytes,
		SuccessRate:      successRate,
		AvgStoreTime:     avgTime,
		LastStore:        s.stats.LastStore,
	}
}

func (s *BlobService) updateStats(startTime time.Time, bytes int64, success bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	s.stats.TotalStores++
	s.stats.LastStore = time.Now()

	if success {
		s.stats.SuccessfulStores++
		s.stats.TotalBytes += bytes

		storeTime := time.Since(startTime)
		if s.stats.AverageStoreTime == 0 {
			s.stats.AverageStoreTime = storeTime
		} else {
			// Simple moving average
			s.stats.AverageStoreTime = (s.stats.AverageStoreTime + storeTime) / 2
		}
	} else {
		s.stats.FailedStores++
	}
}
