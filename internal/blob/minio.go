package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOProvider implements the Provider interface for MinIO and other
// path-style S3-compatible services.
type MinIOProvider struct {
	client *minio.Client
	config *Config
}

// NewMinIOProvider creates a new MinIO provider.
func NewMinIOProvider(cfg *Config) (*MinIOProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MinIO config: %w", err)
	}

	// The MinIO client wants a bare host, not a URL.
	endpoint := cfg.Endpoint
	if strings.HasPrefix(endpoint, "http://") {
		endpoint = strings.TrimPrefix(endpoint, "http://")
		cfg.UseSSL = false
	} else if strings.HasPrefix(endpoint, "https://") {
		endpoint = strings.TrimPrefix(endpoint, "https://")
		cfg.UseSSL = true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, NewStoreError("minio", "configure", "", 0, err)
	}

	return &MinIOProvider{
		client: client,
		config: cfg,
	}, nil
}

// Store writes data from a reader to the specified key.
func (p *MinIOProvider) Store(ctx context.Context, key string, reader io.Reader, size int64, opts StoreOptions) (*StoreResult, error) {
	startTime := time.Now()

	putOpts := minio.PutObjectOptions{
		ContentType: opts.ContentType,
	}
	if len(opts.Metadata) > 0 {
		putOpts.UserMetadata = opts.Metadata
	}

	// Above the threshold the client transparently switches to a multipart
	// transfer; the configured part size controls the segment granularity.
	if size >= p.config.MultipartThreshold {
		putOpts.PartSize = uint64(p.config.PartSize)
	}

	var tracker *transferReader
	if opts.ProgressCallback != nil {
		tracker = &transferReader{
			total:    size,
			callback: opts.ProgressCallback,
		}
		putOpts.Progress = tracker
	}

	seeker, isSeekable := reader.(io.ReadSeeker)

	var info minio.UploadInfo
	var err error

	for attempt := 0; attempt <= p.config.RetryCount; attempt++ {
		if attempt > 0 {
			if !isSeekable {
				return nil, NewStoreError("minio", "store", key, 0, errors.New("reader is not seekable; cannot retry transfer"))
			}
			if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
				return nil, NewStoreError("minio", "store", key, 0, fmt.Errorf("failed to reset reader: %w", seekErr))
			}
			if tracker != nil {
				tracker.read = 0
				opts.ProgressCallback(0, size)
			}
		}

		storeCtx, cancel := context.WithTimeout(ctx, p.config.StoreTimeout)
		info, err = p.client.PutObject(storeCtx, p.config.Bucket, key, reader, size, putOpts)
		cancel()

		if err == nil {
			break
		}

		if !IsRetryable(err) || attempt == p.config.RetryCount {
			return nil, NewStoreError("minio", "store", key, 0, err)
		}

		select {
		case <-ctx.Done():
			return nil, NewStoreError("minio", "store", key, 0, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	return &StoreResult{
		Key:            key,
		PublicURL:      p.PublicURL(key),
		Size:           info.Size,
		ETag:           info.ETag,
		Backend:        "minio",
		ProcessingTime: time.Since(startTime),
	}, nil
}

// PublicURL returns the public URL for accessing a stored object.
func (p *MinIOProvider) PublicURL(key string) string {
	return p.config.ObjectURL(key)
}

// HealthCheck verifies the backend connection and configuration.
func (p *MinIOProvider) HealthCheck(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.config.Bucket)
	if err != nil {
		return NewStoreError("minio", "health_check", "", 0, err)
	}
	if !exists {
		return NewStoreError("minio", "health_check", "", 0, ErrBucketNotFound)
	}
	return nil
}

// Delete removes an object from storage.
func (p *MinIOProvider) Delete(ctx context.Context, key string) error {
	if err := p.client.RemoveObject(ctx, p.config.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return NewStoreError("minio", "delete", key, 0, err)
	}
	return nil
}

// Stat retrieves metadata about a stored object.
func (p *MinIOProvider) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	objInfo, err := p.client.StatObject(ctx, p.config.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, NewStoreError("minio", "stat", key, 0, err)
	}

	return &ObjectInfo{
		Key:          key,
		Size:         objInfo.Size,
		ETag:         objInfo.ETag,
		ContentType:  objInfo.ContentType,
		LastModified: objInfo.LastModified,
		Metadata:     objInfo.UserMetadata,
	}, nil
}

// transferReader is a progress sink handed to the MinIO client: the client
// calls Read with each slice of bytes it has pushed to the wire.
type transferReader struct {
	callback func(loaded, total int64)
	total    int64
	read     int64
}

func (tr *transferReader) Read(p []byte) (int, error) {
	n := len(p)
	if n > 0 {
		tr.read += int64(n)
		if tr.callback != nil {
			tr.callback(tr.read, tr.total)
		}
	}
	return n, nil
}
