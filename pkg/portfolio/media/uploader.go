// Package media implements image hosting for the admin panel: an upload is
// checked against the configured preset token, sniffed for an accepted image
// type, size limited, and stored in a portfolio.BlobStore under a sharded key.
package media

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes int64 = 10 << 20

var (
	// ErrInvalidPreset indicates the upload preset token did not match
	ErrInvalidPreset = errors.New("invalid upload preset")

	// ErrUnsupportedType indicates the file is not a JPEG, PNG or WebP image
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrTooLarge indicates the file exceeds the size limit
	ErrTooLarge = errors.New("image too large")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Config configures an Uploader
type Config struct {
	// Preset is the token clients must present; empty disables uploads
	Preset   string
	MaxBytes int64
}

// Uploader stores images and returns their public URLs
type Uploader struct {
	store  portfolio.BlobStore
	keys   *KeyGenerator
	config Config
	logger *slog.Logger
}

// NewUploader creates an uploader writing to store
func NewUploader(store portfolio.BlobStore, config Config, logger *slog.Logger) *Uploader {
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{store: store, keys: NewKeyGenerator(), config: config, logger: logger}
}

// Result describes a stored image
type Result struct {
	SecureURL string `json:"secure_url"`
	Key       string `json:"key"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
}

// Upload validates and stores one image
func (u *Uploader) Upload(ctx context.Context, r io.Reader, preset string) (*Result, error) {
	if u.config.Preset == "" ||
		subtle.ConstantTimeCompare([]byte(preset), []byte(u.config.Preset)) != 1 {
		return nil, fmt.Errorf("%w: %w", portfolio.ErrInvalidRecord, ErrInvalidPreset)
	}

	data, err := io.ReadAll(io.LimitReader(r, u.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.config.MaxBytes {
		return nil, fmt.Errorf("%w: %w: limit is %d bytes", portfolio.ErrInvalidRecord, ErrTooLarge, u.config.MaxBytes)
	}

	mimeType := DetectImageType(data)
	ext, ok := extensions[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", portfolio.ErrInvalidRecord, ErrUnsupportedType, mimeType)
	}

	key := u.keys.GenerateKey(uuid.New(), ext)
	params := portfolio.UploadParams{ObjectKey: key, MimeType: mimeType, Size: int64(len(data))}
	if err := u.store.Upload(ctx, bytes.NewReader(data), params); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	u.logger.InfoContext(ctx, "image uploaded", "key", key, "mime_type", mimeType, "size", len(data))
	return &Result{
		SecureURL: u.store.PublicURL(key),
		Key:       key,
		MimeType:  mimeType,
		Size:      int64(len(data)),
	}, nil
}

// DetectImageType sniffs the content type of data.
func DetectImageType(data []byte) string {
	return http.DetectContentType(data)
}

// Accepts reports whether mimeType is an accepted image type.
func Accepts(mimeType string) bool {
	_, ok := extensions[mimeType]
	return ok
}
