package portfolio

import (
	"context"

	"github.com/google/uuid"
)

// Service is the shared content gateway. The site renderer reads through it
// and the admin workflow reads and writes through it.
type Service interface {
	// Row operations
	List(ctx context.Context, c Collection, q Query) ([]Record, error)
	Get(ctx context.Context, c Collection, id uuid.UUID) (Record, error)
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, c Collection, id uuid.UUID) error

	// Settings singleton
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) (*Settings, error)

	// Health
	Ping(ctx context.Context) error
}
