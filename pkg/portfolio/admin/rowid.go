package admin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RowID identifies a row on an editing sheet. It is either a PendingID for a
// row that exists only locally or a PersistedID carrying the store's id.
type RowID interface {
	fmt.Stringer
	isRowID()
}

// PendingID is a session-unique local id for a row not yet inserted.
type PendingID struct {
	Local uint64
}

// PersistedID is the store-assigned id of a saved row.
type PersistedID struct {
	Store uuid.UUID
}

func (PendingID) isRowID()   {}
func (PersistedID) isRowID() {}

func (p PendingID) String() string   { return "new-" + strconv.FormatUint(p.Local, 10) }
func (p PersistedID) String() string { return p.Store.String() }

// ParseRowID reverses String.
func ParseRowID(s string) (RowID, error) {
	if rest, ok := strings.CutPrefix(s, "new-"); ok {
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pending row id %q", s)
		}
		return PendingID{Local: n}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid row id %q: %w", s, err)
	}
	return PersistedID{Store: id}, nil
}

func sameID(a, b RowID) bool {
	switch x := a.(type) {
	case PendingID:
		y, ok := b.(PendingID)
		return ok && x == y
	case PersistedID:
		y, ok := b.(PersistedID)
		return ok && x == y
	}
	return false
}
