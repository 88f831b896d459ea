package portfolio

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for row persistence. Implementations
// assign identifiers and store-maintained timestamps on Insert and must be
// safe for concurrent use.
type Repository interface {
	// List returns the rows of a collection ordered by order_index
	List(ctx context.Context, c Collection, q Query) ([]Record, error)

	// Get returns one row by identifier
	Get(ctx context.Context, c Collection, id uuid.UUID) (Record, error)

	// Insert stores a new row and fills in its identifier and timestamp
	Insert(ctx context.Context, r Record) error

	// Update replaces a row keyed by its identifier
	Update(ctx context.Context, r Record) error

	// Delete removes a row by identifier
	Delete(ctx context.Context, c Collection, id uuid.UUID) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}

// Query narrows a listing. The zero value lists every row in ascending order.
type Query struct {
	ActiveOnly bool
	Descending bool
	Limit      int
}

// BlobStore defines the interface for image storage backends
type BlobStore interface {
	// Upload stores content under params.ObjectKey
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download opens a stored object
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes a stored object
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// PublicURL returns the address browsers use to fetch the object
	PublicURL(objectKey string) string
}

// EventSink receives notifications after successful gateway writes
type EventSink interface {
	RecordCreated(ctx context.Context, r Record) error
	RecordUpdated(ctx context.Context, r Record) error
	RecordDeleted(ctx context.Context, c Collection, id uuid.UUID) error
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for storing an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}
