package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 stores objects in an S3-compatible bucket served through a CDN domain.
type S3 struct {
	client    *minio.Client
	bucket    string
	cdnDomain string
}

func NewS3(endpoint, accessKey, secretKey, bucket, cdnDomain string, secure bool) (*S3, error) {
	if endpoint == "" || bucket == "" {
		return nil, errors.New("s3 storage requires S3_ENDPOINT and S3_BUCKET")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	if cdnDomain == "" {
		cdnDomain = endpoint + "/" + bucket
	}
	return &S3{client: client, bucket: bucket, cdnDomain: cdnDomain}, nil
}

func (s *S3) URL(key string) string {
	return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
}

// Key returns the object key behind url, or "" when url is not ours.
func (s *S3) Key(url string) string {
	prefix := fmt.Sprintf("https://%s/", s.cdnDomain)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *S3) Delete(ctx context.Context, url string) error {
	key := s.Key(url)
	if key == "" {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
