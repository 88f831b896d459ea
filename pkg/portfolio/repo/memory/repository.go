package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

type entry struct {
	record portfolio.Record
	seq    uint64
}

// Repository implements portfolio.Repository using in-memory storage
type Repository struct {
	mu   sync.RWMutex
	rows map[portfolio.Collection]map[uuid.UUID]entry
	seq  uint64
	now  func() time.Time
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		rows: make(map[portfolio.Collection]map[uuid.UUID]entry),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) table(c portfolio.Collection) map[uuid.UUID]entry {
	t, ok := r.rows[c]
	if !ok {
		t = make(map[uuid.UUID]entry)
		r.rows[c] = t
	}
	return t
}

func (r *Repository) List(ctx context.Context, c portfolio.Collection, q portfolio.Query) ([]portfolio.Record, error) {
	if !c.IsValid() {
		return nil, portfolio.ErrUnknownCollection
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]entry, 0, len(r.rows[c]))
	for _, e := range r.rows[c] {
		if q.ActiveOnly {
			if item, ok := e.record.(portfolio.Item); ok && !item.Active() {
				continue
			}
		}
		entries = append(entries, e)
	}

	// order_index, then insertion order
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ai, bi := sortIndex(a.record), sortIndex(b.record)
		less := ai < bi || (ai == bi && a.seq < b.seq)
		if q.Descending {
			return !less
		}
		return less
	})

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}

	// Return copies to prevent external modifications
	out := make([]portfolio.Record, len(entries))
	for i, e := range entries {
		out[i] = e.record.Clone()
	}
	return out, nil
}

func sortIndex(r portfolio.Record) int {
	if item, ok := r.(portfolio.Item); ok {
		return item.SortIndex()
	}
	return 0
}

func (r *Repository) Get(ctx context.Context, c portfolio.Collection, id uuid.UUID) (portfolio.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.rows[c][id]
	if !exists {
		return nil, portfolio.ErrNotFound
	}
	return e.record.Clone(), nil
}

func (r *Repository) Insert(ctx context.Context, rec portfolio.Record) error {
	c := rec.Collection()
	if !c.IsValid() {
		return portfolio.ErrUnknownCollection
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(c)
	if c.IsSingleton() && len(t) > 0 {
		return portfolio.ErrConflict
	}

	rec.SetRecordID(uuid.New())
	rec.Touch(r.now())
	r.seq++
	t[rec.RecordID()] = entry{record: rec.Clone(), seq: r.seq}
	return nil
}

// Update keeps the stored creation time of items; the settings row gets a
// fresh updated_at.
func (r *Repository) Update(ctx context.Context, rec portfolio.Record) error {
	c := rec.Collection()
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.rows[c]
	e, exists := t[rec.RecordID()]
	if !exists {
		return portfolio.ErrNotFound
	}

	if item, ok := e.record.(portfolio.Item); ok {
		rec.Touch(item.Created())
	} else {
		rec.Touch(r.now())
	}
	t[rec.RecordID()] = entry{record: rec.Clone(), seq: e.seq}
	return nil
}

func (r *Repository) Delete(ctx context.Context, c portfolio.Collection, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[c][id]; !exists {
		return portfolio.ErrNotFound
	}
	delete(r.rows[c], id)
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}
