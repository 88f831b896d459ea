package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(context.Background(), Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(context.Background(), Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
	})
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "aws virtual hosted",
			cfg:  Config{Bucket: "site", Region: "sa-east-1"},
			want: "https://site.s3.sa-east-1.amazonaws.com/images/a%20b.png",
		},
		{
			name: "public base",
			cfg:  Config{Bucket: "site", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/images/a%20b.png",
		},
		{
			name: "minio path style",
			cfg:  Config{Bucket: "site", Endpoint: "http://localhost:9000", UsePathStyle: true},
			want: "http://localhost:9000/site/images/a%20b.png",
		},
		{
			name: "custom endpoint virtual hosted",
			cfg:  Config{Bucket: "site", Endpoint: "https://storage.example.com"},
			want: "https://site.storage.example.com/images/a%20b.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicURL(tt.cfg, "images/a b.png"))
		})
	}
}

func TestClassify(t *testing.T) {
	notFound := &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	denied := &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}
	other := &smithy.GenericAPIError{Code: "SlowDown", Message: "busy"}

	assert.Equal(t, portfolio.KindNotFound, portfolio.KindOf(classify("get", notFound)))
	assert.Equal(t, portfolio.KindTransport, portfolio.KindOf(classify("get", denied)))
	assert.Equal(t, portfolio.KindUnknown, portfolio.KindOf(classify("get", other)))
	assert.Equal(t, portfolio.KindTransport, portfolio.KindOf(classify("get", errors.New("dial tcp: timeout"))))
	assert.ErrorIs(t, classify("get", context.Canceled), context.Canceled)
}

// TestS3Backend_Integration runs against MinIO or S3 when S3_TEST_ENDPOINT is set.
func TestS3Backend_Integration(t *testing.T) {
	endpoint := os.Getenv("S3_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_TEST_ENDPOINT not set")
	}
	ctx := context.Background()

	backend, err := New(ctx, Config{
		Bucket:                 "portfolio-test",
		Endpoint:               endpoint,
		UsePathStyle:           true,
		AccessKeyID:            os.Getenv("S3_TEST_ACCESS_KEY"),
		SecretAccessKey:        os.Getenv("S3_TEST_SECRET_KEY"),
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	key := "images/" + uuid.NewString() + ".png"
	data := []byte("\x89PNG\r\n\x1a\n")
	require.NoError(t, backend.Upload(ctx, bytes.NewReader(data), portfolio.UploadParams{ObjectKey: key, MimeType: "image/png"}))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}
