package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"marketplace/config"

	"github.com/google/uuid"
)

// Storage keeps uploaded images and serves them from a public URL.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object behind a URL previously returned by Put.
	// URLs that do not belong to the store are ignored.
	Delete(ctx context.Context, url string) error
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg *config.Configuration) (Storage, error) {
	switch cfg.StorageDriver {
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryCloud, cfg.CloudinaryAPIKey, cfg.CloudinarySecret)
	case "s3", "":
		return NewS3(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.CDNDomain, cfg.S3Secure)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)

// ObjectKey builds a unique key under folder from the uploaded file name.
func ObjectKey(folder, filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ToLower(unsafeName.ReplaceAllString(base, "-"))
	return fmt.Sprintf("%s/%s-%s%s", folder, base, uuid.NewString(), ext)
}

// UploadImage validates, optionally compresses and stores a multipart image.
func UploadImage(ctx context.Context, store Storage, folder string, fh *multipart.FileHeader) (string, error) {
	img, err := PrepareImage(fh)
	if err != nil {
		return "", err
	}
	key := ObjectKey(folder, fh.Filename, img.Ext)
	url, err := store.Put(ctx, key, img.Reader(), int64(len(img.Data)), img.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fh.Filename, err)
	}
	return url, nil
}
