package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Entry model related methods.
	CreateEntry(ctx context.Context, create *Entry) (*Entry, error)
	ListEntries(ctx context.Context, find *FindEntry) ([]*Entry, error)
	DeleteEntry(ctx context.Context, delete *DeleteEntry) error
}
