package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/nfnt/resize"
	"golang.org/x/image/webp"
)

const (
	MaxFileSize       = 5 * 1024 * 1024
	compressThreshold = 1 * 1024 * 1024
	maxWidth          = 1200
)

var (
	ErrFileTooLarge     = errors.New("file size exceeds the 5MB limit")
	ErrUnsupportedImage = errors.New("unsupported file type, accepted formats: JPEG, PNG, WebP")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PreparedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

func (p *PreparedImage) Reader() io.Reader {
	return bytes.NewReader(p.Data)
}

func decode(data []byte, contentType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch contentType {
	case "image/png":
		return png.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		return jpeg.Decode(r)
	}
}

// PrepareImage reads an upload, checks type and size and re-encodes large
// images as JPEG at most maxWidth pixels wide.
func PrepareImage(fh *multipart.FileHeader) (*PreparedImage, error) {
	if fh.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return prepareBytes(data)
}

func prepareBytes(data []byte) (*PreparedImage, error) {
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	if len(data) <= compressThreshold {
		return &PreparedImage{Data: data, ContentType: contentType, Ext: ext}, nil
	}

	img, err := decode(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &PreparedImage{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: ".jpg"}, nil
}
