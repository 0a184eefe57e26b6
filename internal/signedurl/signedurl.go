// Package signedurl issues time-limited read URLs for externally stored
// files using S3-compatible presigning.
package signedurl

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/zulandar/stagedocs/internal/config"
)

// DefaultExpiry is how long an issued URL stays valid.
const DefaultExpiry = 5 * time.Minute

// maxExpiry is the S3 presign ceiling.
const maxExpiry = 7 * 24 * time.Hour

// Issuer signs GET URLs for objects in one bucket. Signing is local: the
// region is fixed so no bucket-location lookup is made.
type Issuer struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// New builds an Issuer from storage settings.
func New(cfg config.StorageConfig) (*Issuer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("signedurl: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("signedurl: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("signedurl: client for %s: %w", cfg.Endpoint, err)
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if expiry > maxExpiry {
		expiry = maxExpiry
	}
	return &Issuer{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// SignedURL returns a presigned GET URL for the object at storagePath.
func (i *Issuer) SignedURL(ctx context.Context, storagePath string) (string, error) {
	object := ObjectName(storagePath)
	if object == "" {
		return "", fmt.Errorf("signedurl: empty storage path")
	}
	u, err := i.client.PresignedGetObject(ctx, i.bucket, object, i.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("signedurl: presign %s: %w", object, err)
	}
	return u.String(), nil
}

// Expiry reports how long issued URLs stay valid.
func (i *Issuer) Expiry() time.Duration { return i.expiry }

// ObjectName normalizes a stored path to an object key: a leading slash or
// gs:// / s3:// bucket prefix is dropped, and "." segments are cleaned.
func ObjectName(storagePath string) string {
	p := strings.TrimSpace(storagePath)
	for _, scheme := range []string{"gs://", "s3://"} {
		if strings.HasPrefix(p, scheme) {
			p = strings.TrimPrefix(p, scheme)
			if i := strings.IndexByte(p, '/'); i >= 0 {
				p = p[i+1:]
			} else {
				p = ""
			}
		}
	}
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return strings.TrimLeft(path.Clean("/"+p), "/")
}
