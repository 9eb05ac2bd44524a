package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary stores images in a Cloudinary account.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cloud, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloud == "" {
		return nil, errors.New("cloudinary storage requires CLOUDINARY_CLOUD_NAME")
	}
	cld, err := cloudinary.NewFromParams(cloud, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	dir, file := path.Split(key)
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   strings.TrimSuffix(dir, "/"),
		PublicID: strings.TrimSuffix(file, path.Ext(file)),
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, url string) error {
	id := PublicID(url)
	if id == "" {
		return nil
	}
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	return err
}

var versionPrefix = regexp.MustCompile(`^v\d+/`)

// PublicID extracts "folder/name" from a res.cloudinary.com delivery URL.
func PublicID(url string) string {
	if !strings.Contains(url, "res.cloudinary.com") {
		return ""
	}
	_, after, ok := strings.Cut(url, "/upload/")
	if !ok || after == "" {
		return ""
	}
	id := versionPrefix.ReplaceAllString(after, "")
	return strings.TrimSuffix(id, path.Ext(id))
}
