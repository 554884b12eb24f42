package storage

import (
	"context"

	"github.com/poiesic/hobbyfind/core"
)

// EntryRepository provides persistence for vector index entries.
// Implementations must be thread-safe and support concurrent access.
type EntryRepository interface {
	// PutEntries inserts or replaces index entries.
	// Entries are keyed by id; re-putting an id overwrites it.
	// Calling with no entries is a no-op.
	PutEntries(ctx context.Context, entries ...*core.IndexEntry) error

	// DeleteEntries removes entries by id.
	// Ids that are not present are ignored, not an error.
	DeleteEntries(ctx context.Context, ids ...core.ID) error

	// GetEntry retrieves a single entry by id.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error)

	// ListIDs returns the set of ids currently in the repository.
	// Used by the incremental synchronizer for reconciliation.
	ListIDs(ctx context.Context) (map[core.ID]struct{}, error)

	// Count returns the number of entries in the repository.
	Count(ctx context.Context) (int, error)

	// FindSimilar returns up to limit entries ranked by descending
	// similarity to the given vector. No score floor is applied here;
	// the contract is simply "limit nearest by similarity".
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.Match, error)

	// Commit flushes pending writes to durable storage.
	// Backends that persist automatically implement this as a no-op.
	Commit(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
