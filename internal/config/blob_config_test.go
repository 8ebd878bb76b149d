package config

import (
	"testing"
	"time"

	"content-portal-api/internal/blob"
)

func validBlobConfig() *BlobConfiguration {
	return &BlobConfiguration{
		Backend:         blob.BackendMinIO,
		Endpoint:        "minio.internal:9000",
		Bucket:          "portal",
		AccessKey:       "ak",
		SecretKey:       "sk",
		KeyPrefix:       "uploads/",
		ThumbnailPrefix: "thumbnails/",
	}
}

func TestBlobConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BlobConfiguration)
		wantErr bool
	}{
		{
			name:   "valid minio config",
			mutate: func(c *BlobConfiguration) {},
		},
		{
			name:    "missing bucket",
			mutate:  func(c *BlobConfiguration) { c.Bucket = "" },
			wantErr: true,
		},
		{
			name:    "missing access key",
			mutate:  func(c *BlobConfiguration) { c.AccessKey = "" },
			wantErr: true,
		},
		{
			name:    "missing secret key",
			mutate:  func(c *BlobConfiguration) { c.SecretKey = "" },
			wantErr: true,
		},
		{
			name:    "minio requires endpoint",
			mutate:  func(c *BlobConfiguration) { c.Endpoint = "" },
			wantErr: true,
		},
		{
			name: "aws works without endpoint",
			mutate: func(c *BlobConfiguration) {
				c.Backend = blob.BackendAWS
				c.Endpoint = ""
			},
		},
		{
			name:    "unsupported backend",
			mutate:  func(c *BlobConfiguration) { c.Backend = "ftp" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBlobConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	cfg := validBlobConfig()
	now := time.UnixMilli(1718000000000)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "plain filename",
			filename: "clip.mp4",
			want:     "uploads/ed1/1718000000000-clip.mp4",
		},
		{
			name:     "spaces and unicode replaced",
			filename: "my clip (final)™.mp4",
			want:     "uploads/ed1/1718000000000-my_clip__final__.mp4",
		},
		{
			name:     "path separators neutralized",
			filename: "../../etc/passwd",
			want:     "uploads/ed1/1718000000000-.._.._etc_passwd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ObjectKey("ed1", tt.filename, now); got != tt.want {
				t.Errorf("ObjectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThumbnailKey(t *testing.T) {
	cfg := validBlobConfig()
	now := time.UnixMilli(1718000000000)

	want := "thumbnails/ed1/1718000000000-thumb.jpg"
	if got := cfg.ThumbnailKey("ed1", "thumb.jpg", now); got != want {
		t.Errorf("ThumbnailKey() = %q, want %q", got, want)
	}
}

func TestBuildKeyAddsPrefixSlash(t *testing.T) {
	now := time.UnixMilli(1718000000000)

	if got, want := buildKey("uploads", "ed1", "a.png", now), "uploads/ed1/1718000000000-a.png"; got != want {
		t.Errorf("buildKey() = %q, want %q", got, want)
	}
}
