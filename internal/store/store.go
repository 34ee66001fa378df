package store

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrEntryNotFound is returned when no stored entry matches an id.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAmbiguousID is returned when an id prefix matches more than one entry.
	ErrAmbiguousID = errors.New("ambiguous entry id")
	// ErrIO wraps filesystem and database failures, including malformed data files.
	ErrIO = errors.New("storage error")
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store persists completed entries and the active timer.
type Store interface {
	// Entries returns all entries in insertion order.
	Entries() ([]Entry, error)
	AppendEntry(e Entry) error
	DeleteEntry(id string) error

	// ActiveTimer returns nil when no timer is active.
	ActiveTimer() (*ActiveTimer, error)
	SaveActiveTimer(a ActiveTimer) error
	ClearActiveTimer() error

	Close() error
}

// Open returns the store for backend rooted at dataDir.
func Open(backend, dataDir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch backend {
	case "", BackendJSON:
		return NewJSON(dataDir, logger)
	case BackendSQLite:
		return NewSQLite(SQLitePath(dataDir), logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
