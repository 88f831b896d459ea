package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// service implements the Service interface on top of a Repository
type service struct {
	repository Repository
	eventSink  EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for event sink failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

func (s *service) List(ctx context.Context, c Collection, q Query) ([]Record, error) {
	if !c.IsValid() {
		return nil, &RecordError{Collection: c, Op: "list", Err: ErrUnknownCollection}
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	rows, err := s.repository.List(ctx, c, q)
	if err != nil {
		return nil, &RecordError{Collection: c, Op: "list", Err: err}
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, c Collection, id uuid.UUID) (Record, error) {
	if !c.IsValid() {
		return nil, &RecordError{Collection: c, ID: id, Op: "get", Err: ErrUnknownCollection}
	}
	r, err := s.repository.Get(ctx, c, id)
	if err != nil {
		return nil, &RecordError{Collection: c, ID: id, Op: "get", Err: err}
	}
	return r, nil
}

// Create inserts a copy of r. Any identifier the caller set is discarded; the
// store assigns a new one.
func (s *service) Create(ctx context.Context, r Record) (Record, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	row := r.Clone()
	row.SetRecordID(uuid.Nil)
	if err := row.Validate(); err != nil {
		return nil, &RecordError{Collection: row.Collection(), Op: "create", Err: err}
	}

	if err := s.repository.Insert(ctx, row); err != nil {
		return nil, &RecordError{Collection: row.Collection(), Op: "create", Err: err}
	}

	if err := s.eventSink.RecordCreated(ctx, row); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "created", "collection", row.Collection(), "err", err)
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, r Record) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	id := r.RecordID()
	if id == uuid.Nil {
		return &RecordError{Collection: r.Collection(), Op: "update", Err: ErrNotFound}
	}
	if err := r.Validate(); err != nil {
		return &RecordError{Collection: r.Collection(), ID: id, Op: "update", Err: err}
	}

	row := r.Clone()
	if err := s.repository.Update(ctx, row); err != nil {
		return &RecordError{Collection: r.Collection(), ID: id, Op: "update", Err: err}
	}

	if err := s.eventSink.RecordUpdated(ctx, row); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "updated", "collection", row.Collection(), "err", err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, c Collection, id uuid.UUID) error {
	if !c.IsValid() {
		return &RecordError{Collection: c, ID: id, Op: "delete", Err: ErrUnknownCollection}
	}
	if err := s.repository.Delete(ctx, c, id); err != nil {
		return &RecordError{Collection: c, ID: id, Op: "delete", Err: err}
	}

	if err := s.eventSink.RecordDeleted(ctx, c, id); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "deleted", "collection", c, "err", err)
	}
	return nil
}

// GetSettings returns the settings singleton, or ErrNotFound when the row has
// never been saved.
func (s *service) GetSettings(ctx context.Context) (*Settings, error) {
	rows, err := s.repository.List(ctx, CollectionSettings, Query{Limit: 1})
	if err != nil {
		return nil, &RecordError{Collection: CollectionSettings, Op: "get", Err: err}
	}
	if len(rows) == 0 {
		return nil, &RecordError{Collection: CollectionSettings, Op: "get", Err: ErrNotFound}
	}
	settings, ok := rows[0].(*Settings)
	if !ok {
		return nil, &RecordError{Collection: CollectionSettings, Op: "get", Err: fmt.Errorf("unexpected row type %T", rows[0])}
	}
	return settings, nil
}

// SaveSettings upserts the singleton. The existence check runs immediately
// before the write; an insert that loses a race against another writer is
// retried once as an update of the row that won.
func (s *service) SaveSettings(ctx context.Context, draft *Settings) (*Settings, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: nil settings", ErrInvalidRecord)
	}
	row := draft.Clone().(*Settings)

	existing, err := s.GetSettings(ctx)
	switch {
	case err == nil:
		row.ID = existing.ID
		return row, s.Update(ctx, row)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	created, err := s.Create(ctx, row)
	if err == nil {
		return created.(*Settings), nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, err
	}

	existing, getErr := s.GetSettings(ctx)
	if getErr != nil {
		return nil, errors.Join(err, getErr)
	}
	row.ID = existing.ID
	return row, s.Update(ctx, row)
}

func (s *service) Ping(ctx context.Context) error {
	if err := s.repository.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping: %w", err)
	}
	return nil
}
