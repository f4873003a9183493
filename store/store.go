// Package store persists board snapshots keyed by an opaque identifier.
// Board states are stored as opaque text: encoding them is the caller's business.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no board has the requested id
var ErrNotFound = errors.New("board not found")

// Record is a stored board snapshot
type Record struct {
	ID        string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the listing view of a stored board
type Summary struct {
	ID        string
	CreatedAt time.Time
}

// Store is the persistence contract used by the API layer
type Store interface {
	Create(ctx context.Context, state string) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, id, state string) (Record, error)
	// List returns every board, newest first
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

func newID() string {
	return uuid.NewString()
}

// now is truncated so that both backends hand back identical timestamps
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
