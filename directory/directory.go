package directory

import (
	"context"
	"errors"

	"github.com/poiesic/hobbyfind/core"
)

// Directory is the authoritative system of record for users.
// Identifiers are created and destroyed only there; the pipeline reads
// snapshots and performs point lookups, never writes.
// Implementations must be thread-safe for concurrent use.
type Directory interface {
	// ListAll returns a full snapshot of the current user set.
	// Used for cold-start index construction and every synchronization pass.
	ListAll(ctx context.Context) ([]*core.User, error)

	// GetByID retrieves a single user by id.
	// Returns ErrNotFound when the id does not exist.
	GetByID(ctx context.Context, id core.ID) (*core.User, error)
}

var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrUnavailable indicates the directory service could not be reached
	// or answered with a server error after retries.
	ErrUnavailable = errors.New("directory unavailable")
)
