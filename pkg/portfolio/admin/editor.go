// Package admin implements the editing workflow behind the admin panel: one
// sheet of rows per collection plus a settings draft, edited locally and
// written to a portfolio.Service on explicit save.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/contact"
)

var (
	// ErrRowNotFound indicates a row id or index that is not on the sheet
	ErrRowNotFound = errors.New("row not found")

	// ErrNotEditable indicates a collection that has no sheet (settings)
	ErrNotEditable = errors.New("collection is edited through settings")
)

// Row is one line of a sheet.
type Row struct {
	ID     RowID
	Record portfolio.Record
	Dirty  bool

	// gen counts local edits so a save only clears dirt it actually wrote
	gen uint64
}

// SettingsDraft is the settings row being edited plus the WhatsApp link split
// into its dialing code and national number.
type SettingsDraft struct {
	Settings       portfolio.Settings
	WhatsAppDDI    string
	WhatsAppNumber string
}

// Editor holds local editing state. Methods are safe for concurrent use; the
// lock is never held across a gateway call, so overlapping loads race and the
// last response wins.
type Editor struct {
	svc    portfolio.Service
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	sheets    map[portfolio.Collection][]*Row
	settings  SettingsDraft
	nextLocal uint64
	notice    *Notice
}

// Option configures an Editor
type Option func(*Editor)

// WithLogger sets the logger for failures
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithClock replaces time.Now, for notice expiry
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// NewEditor creates an editor over svc with an empty sheet per collection
// and a default settings draft.
func NewEditor(svc portfolio.Service, opts ...Option) *Editor {
	e := &Editor{
		svc:    svc,
		logger: slog.Default(),
		now:    time.Now,
		sheets: make(map[portfolio.Collection][]*Row),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settings = newDraft(portfolio.DefaultSettings())
	return e
}

func newDraft(s *portfolio.Settings) SettingsDraft {
	ddi, number := contact.SplitWhatsAppLink(s.WhatsAppLink)
	return SettingsDraft{Settings: *s, WhatsAppDDI: ddi, WhatsAppNumber: number}
}

func editable(c portfolio.Collection) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", portfolio.ErrUnknownCollection, string(c))
	}
	if c.IsSingleton() {
		return ErrNotEditable
	}
	return nil
}

// Rows returns a copy of the sheet for c.
func (e *Editor) Rows(c portfolio.Collection) []Row {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheet := e.sheets[c]
	out := make([]Row, len(sheet))
	for i, r := range sheet {
		out[i] = Row{ID: r.ID, Record: r.Record.Clone(), Dirty: r.Dirty, gen: r.gen}
	}
	return out
}

// Load replaces the sheet for c with the stored rows ordered by order_index.
func (e *Editor) Load(ctx context.Context, c portfolio.Collection) error {
	if err := editable(c); err != nil {
		return err
	}

	records, err := e.svc.List(ctx, c, portfolio.Query{})
	if err != nil {
		e.fail(ctx, "load", c, err)
		return err
	}

	sheet := make([]*Row, len(records))
	for i, r := range records {
		sheet[i] = &Row{ID: PersistedID{Store: r.RecordID()}, Record: r}
	}

	e.mu.Lock()
	e.sheets[c] = sheet
	e.mu.Unlock()
	return nil
}

// AddRow appends a blank, active row with order index 0. Nothing is sent to
// the store until SaveAll.
func (e *Editor) AddRow(c portfolio.Collection) (RowID, error) {
	if err := editable(c); err != nil {
		return nil, err
	}
	rec, err := portfolio.NewBlank(c)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextLocal++
	id := PendingID{Local: e.nextLocal}
	e.sheets[c] = append(e.sheets[c], &Row{ID: id, Record: rec, Dirty: true, gen: 1})
	return id, nil
}

// EditField applies one form edit to the row at index. A value that cannot be
// coerced leaves the row unchanged.
func (e *Editor) EditField(c portfolio.Collection, index int, field, value string) error {
	if err := editable(c); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sheet := e.sheets[c]
	if index < 0 || index >= len(sheet) {
		return fmt.Errorf("%w: %s[%d]", ErrRowNotFound, c, index)
	}

	row := sheet[index]
	next := row.Record.Clone()
	if err := portfolio.SetField(next, field, value); err != nil {
		return err
	}
	row.Record = next
	row.Dirty = true
	row.gen++
	return nil
}

// DeleteRow removes a row. A pending row is dropped locally with no store
// call. A persisted row is deleted in the store immediately, after which the
// sheet is reloaded.
func (e *Editor) DeleteRow(ctx context.Context, c portfolio.Collection, id RowID) error {
	if err := editable(c); err != nil {
		return err
	}

	switch id := id.(type) {
	case PendingID:
		e.mu.Lock()
		defer e.mu.Unlock()
		sheet := e.sheets[c]
		for i, r := range sheet {
			if sameID(r.ID, id) {
				e.sheets[c] = append(sheet[:i:i], sheet[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)

	case PersistedID:
		if err := e.svc.Delete(ctx, c, id.Store); err != nil {
			e.fail(ctx, "delete", c, err)
			return err
		}
		if err := e.Load(ctx, c); err != nil {
			return err
		}
		e.succeed(msgItemDeleted)
		return nil
	}
	return fmt.Errorf("%w: unsupported row id %T", ErrRowNotFound, id)
}

type pendingWrite struct {
	id     RowID
	record portfolio.Record
	gen    uint64
}

// SaveAll writes the sheet in order, one request at a time. Pending rows are
// inserted and promoted in place to their new ids; persisted rows are updated
// only when dirty. When every write succeeds the sheet is reloaded. When any
// fails, local state is kept so a retry does not insert the already saved rows
// again, and the joined error is returned. Writes that succeeded stay in the
// store.
func (e *Editor) SaveAll(ctx context.Context, c portfolio.Collection) error {
	if err := editable(c); err != nil {
		return err
	}

	e.mu.Lock()
	var writes []pendingWrite
	for _, r := range e.sheets[c] {
		if _, pending := r.ID.(PendingID); pending || r.Dirty {
			writes = append(writes, pendingWrite{id: r.ID, record: r.Record.Clone(), gen: r.gen})
		}
	}
	e.mu.Unlock()

	var errs []error
	for _, w := range writes {
		switch id := w.id.(type) {
		case PendingID:
			created, err := e.svc.Create(ctx, w.record)
			if err != nil {
				errs = append(errs, fmt.Errorf("insert %s: %w", id, err))
				continue
			}
			e.promote(c, id, created, w.gen)

		case PersistedID:
			if err := e.svc.Update(ctx, w.record); err != nil {
				errs = append(errs, fmt.Errorf("update %s: %w", id, err))
				continue
			}
			e.markClean(c, id, w.gen)
		}
	}

	if err := errors.Join(errs...); err != nil {
		e.fail(ctx, "save", c, err)
		return err
	}

	if err := e.Load(ctx, c); err != nil {
		return err
	}
	e.succeed(msgItemsSaved)
	return nil
}

// promote swaps a pending row's id for the stored one. Edits made while the
// insert was in flight are kept and leave the row dirty.
func (e *Editor) promote(c portfolio.Collection, id PendingID, created portfolio.Record, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.sheets[c] {
		if !sameID(r.ID, id) {
			continue
		}
		r.ID = PersistedID{Store: created.RecordID()}
		if r.gen == gen {
			r.Record = created
			r.Dirty = false
		} else {
			r.Record.SetRecordID(created.RecordID())
		}
		return
	}
}

func (e *Editor) markClean(c portfolio.Collection, id PersistedID, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.sheets[c] {
		if sameID(r.ID, id) && r.gen == gen {
			r.Dirty = false
			return
		}
	}
}

// Settings returns a copy of the settings draft.
func (e *Editor) Settings() SettingsDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// LoadSettings fetches the settings row into the draft. A store with no
// settings row yields blank defaults with every section visible.
func (e *Editor) LoadSettings(ctx context.Context) error {
	s, err := e.svc.GetSettings(ctx)
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		s = portfolio.DefaultSettings()
	case err != nil:
		e.fail(ctx, "load", portfolio.CollectionSettings, err)
		return err
	}

	e.mu.Lock()
	e.settings = newDraft(s)
	e.mu.Unlock()
	return nil
}

// EditSettings applies one form edit to the settings draft.
func (e *Editor) EditSettings(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.settings.Settings
	if err := portfolio.SetField(&next, field, value); err != nil {
		return err
	}
	e.settings.Settings = next
	if field == "whatsapp_link" {
		e.settings.WhatsAppDDI, e.settings.WhatsAppNumber = contact.SplitWhatsAppLink(next.WhatsAppLink)
	}
	return nil
}

// SetWhatsApp sets the dialing code and national number of the draft.
func (e *Editor) SetWhatsApp(ddi, number string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.WhatsAppDDI = contact.Digits(ddi)
	e.settings.WhatsAppNumber = contact.Digits(number)
}

// SaveSettings composes the WhatsApp link and upserts the settings row.
func (e *Editor) SaveSettings(ctx context.Context) error {
	e.mu.Lock()
	draft := e.settings.Settings
	draft.WhatsAppLink = contact.ComposeWhatsAppLink(e.settings.WhatsAppDDI, e.settings.WhatsAppNumber)
	e.mu.Unlock()

	saved, err := e.svc.SaveSettings(ctx, &draft)
	if err != nil {
		e.fail(ctx, "save", portfolio.CollectionSettings, err)
		return err
	}

	e.mu.Lock()
	e.settings = newDraft(saved)
	e.mu.Unlock()
	e.succeed(msgSettingsSaved)
	return nil
}

// Notice returns the current notice, if one is showing.
func (e *Editor) Notice() (Notice, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.notice == nil {
		return Notice{}, false
	}
	if e.notice.Expired(e.now()) {
		e.notice = nil
		return Notice{}, false
	}
	return *e.notice, true
}

// Dismiss clears the current notice.
func (e *Editor) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = nil
}

func (e *Editor) succeed(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = &Notice{Kind: NoticeSuccess, Message: msg, At: e.now()}
}

func (e *Editor) fail(ctx context.Context, op string, c portfolio.Collection, err error) {
	e.logger.WarnContext(ctx, "admin "+op+" failed", "collection", c, "kind", portfolio.KindOf(err), "err", err)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.notice = &Notice{
		Kind:    NoticeError,
		Message: fmt.Sprintf("Error: could not %s %s: %v", op, c, err),
		At:      e.now(),
	}
}
