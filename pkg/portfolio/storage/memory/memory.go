package memory

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

type object struct {
	data      []byte
	mimeType  string
	updatedAt time.Time
	version   uint64
}

// Backend keeps images in a map. It backs tests and the zero-config
// development server; nothing survives a restart.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string]object
	writes    uint64
	urlPrefix string
}

// New creates a new in-memory storage backend. Public URLs are urlPrefix
// followed by the object key.
func New(urlPrefix string) *Backend {
	return &Backend{
		objects:   make(map[string]object),
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*portfolio.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, portfolio.ErrNotFound
	}

	return &portfolio.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(obj.data)),
		ContentType: obj.mimeType,
		UpdatedAt:   obj.updatedAt,
		ETag:        "v" + strconv.FormatUint(obj.version, 10),
	}, nil
}

// Upload stores content under params.ObjectKey
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params portfolio.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.writes++
	b.objects[params.ObjectKey] = object{data: data, mimeType: mimeType, updatedAt: time.Now().UTC(), version: b.writes}
	return nil
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// Download returns a reader over a stored copy
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, portfolio.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return portfolio.ErrNotFound
	}
	delete(b.objects, objectKey)
	return nil
}

func (b *Backend) PublicURL(objectKey string) string {
	return b.urlPrefix + "/" + objectKey
}
