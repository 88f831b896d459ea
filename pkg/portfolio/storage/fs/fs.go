// Package fs stores uploaded images under a local directory. The server
// serves them itself under the configured URL prefix.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// Backend is a filesystem implementation of portfolio.BlobStore.
type Backend struct {
	baseDir   string
	urlPrefix string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string // directory images are written to
	URLPrefix string // URL prefix the files are served under, e.g. /media
}

// New creates the base directory if needed and returns a backend over it.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{
		baseDir:   filepath.Clean(config.BaseDir),
		urlPrefix: strings.TrimSuffix(config.URLPrefix, "/"),
	}, nil
}

// BaseDir returns the directory the backend writes to.
func (b *Backend) BaseDir() string {
	return b.baseDir
}

// resolve maps an object key to a file inside baseDir, refusing keys that
// escape it.
func (b *Backend) resolve(objectKey string) (string, error) {
	p := filepath.Join(b.baseDir, filepath.FromSlash(objectKey))
	if p == b.baseDir || !strings.HasPrefix(p, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: object key %q escapes storage directory", portfolio.ErrInvalidRecord, objectKey)
	}
	return p, nil
}

func notFound(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return portfolio.ErrNotFound
	}
	return err
}

// Upload writes the image to a temporary file and renames it into place, so
// readers never see a partial image.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params portfolio.UploadParams) error {
	target, err := b.resolve(params.ObjectKey)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", params.ObjectKey, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", params.ObjectKey, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", params.ObjectKey, err)
	}
	return os.Rename(tmp.Name(), target)
}

// GetObjectMeta stats the file. The content type comes from the key's
// extension, or from sniffing when the extension is unknown.
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*portfolio.ObjectMeta, error) {
	p, err := b.resolve(objectKey)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, notFound(err)
	}
	if info.IsDir() {
		return nil, portfolio.ErrNotFound
	}

	contentType := mime.TypeByExtension(path.Ext(objectKey))
	if contentType == "" {
		contentType = sniff(p)
	}
	return &portfolio.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
		ETag:        strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36),
	}, nil
}

func sniff(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := io.ReadFull(f, buf)
	return http.DetectContentType(buf[:n])
}

// Download opens the stored file
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	p, err := b.resolve(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// Delete removes the file and prunes directories left empty by it.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	p, err := b.resolve(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return notFound(err)
	}
	for dir := filepath.Dir(p); dir != b.baseDir; dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

func (b *Backend) PublicURL(objectKey string) string {
	return b.urlPrefix + "/" + objectKey
}
