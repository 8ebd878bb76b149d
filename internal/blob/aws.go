package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSProvider implements the Provider interface for AWS S3 and
// virtual-hosted-style S3-compatible services.
type AWSProvider struct {
	client *s3.Client
	config *Config
}

// NewAWSProvider creates a new AWS S3 provider.
func NewAWSProvider(cfg *Config) (*AWSProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AWS S3 config: %w", err)
	}
	if cfg.Region == "" {
		return nil, NewStoreError("aws", "configure", "", 0, errors.New("region is required for the aws backend"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, NewStoreError("aws", "configure", "", 0, err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" && cfg.Endpoint != "https://s3.amazonaws.com" {
		// Custom endpoint for S3-compatible services
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	} else {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &AWSProvider{
		client: client,
		config: cfg,
	}, nil
}

// Store writes data from a reader to the specified key.
func (p *AWSProvider) Store(ctx context.Context, key string, reader io.Reader, size int64, opts StoreOptions) (*StoreResult, error) {
	startTime := time.Now()

	if opts.ProgressCallback != nil {
		reader = &countingReader{
			reader:   reader,
			total:    size,
			callback: opts.ProgressCallback,
		}
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(opts.ContentType),
		ContentLength: aws.Int64(size),
	}

	if opts.Public && p.config.PublicRead {
		input.ACL = types.ObjectCannedACLPublicRead
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	storeCtx, cancel := context.WithTimeout(ctx, p.config.StoreTimeout)
	defer cancel()

	output, err := p.client.PutObject(storeCtx, input)
	if err != nil {
		return nil, NewStoreError("aws", "store", key, 0, err)
	}

	result := &StoreResult{
		Key:            key,
		PublicURL:      p.PublicURL(key),
		Size:           size,
		Backend:        "aws",
		ProcessingTime: time.Since(startTime),
	}
	if output.ETag != nil {
		result.ETag = *output.ETag
	}

	return result, nil
}

// PublicURL returns the public URL for accessing a stored object.
func (p *AWSProvider) PublicURL(key string) string {
	return p.config.ObjectURL(key)
}

// HealthCheck verifies the backend connection and configuration.
func (p *AWSProvider) HealthCheck(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(p.config.Bucket),
	})
	if err != nil {
		return NewStoreError("aws", "health_check", "", 0, err)
	}
	return nil
}

// Delete removes an object from storage.
func (p *AWSProvider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return NewStoreError("aws", "delete", key, 0, err)
	}
	return nil
}

// Stat retrieves metadata about a stored object.
func (p *AWSProvider) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	output, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, NewStoreError("aws", "stat", key, 0, ErrObjectNotFound)
	}

	info := &ObjectInfo{
		Key:      key,
		Metadata: output.Metadata,
	}
	if output.ContentLength != nil {
		info.Size = *output.ContentLength
	}
	if output.ETag != nil {
		info.ETag = *output.ETag
	}
	if output.ContentType != nil {
		info.ContentType = *output.ContentType
	}
	if output.LastModified != nil {
		info.LastModified = *output.LastModified
	}

	return info, nil
}

// countingReader wraps an io.Reader and reports cumulative progress.
type countingReader struct {
	reader   io.Reader
	callback func(loaded, total int64)
	total    int64
	read     int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	if n > 0 {
		cr.read += int64(n)
		if cr.callback != nil {
			cr.callback(cr.read, cr.total)
		}
	}
	return n, err
}
