package store

import (
	"context"
	"time"

	"github.com/kaezarrex/regularity/internal/model"
)

// Store exposes persistence operations required by the engine and services.
// Implementations live under internal/store/<driver>/ (memstore, sqlite,
// postgres). All operations are owner-scoped: no call ever returns another
// owner's records.
type Store interface {
	Owners() Owners
	Timelines() Timelines
	Dots() Dots
	Dashes() Dashes
	Pendings() Pendings
}

type Owners interface {
	Create(ctx context.Context) (*model.Owner, error)
	Get(ctx context.Context, ownerID string) (*model.Owner, error)
}

type Timelines interface {
	// Ensure inserts the timeline with the default policy if it does not
	// exist yet and returns the stored row either way.
	Ensure(ctx context.Context, ownerID, name string) (*model.Timeline, error)
	Create(ctx context.Context, t *model.Timeline) (*model.Timeline, error)
	Get(ctx context.Context, ownerID, name string) (*model.Timeline, error)
	List(ctx context.Context, ownerID string) ([]*model.Timeline, error)
}

type Dots interface {
	Create(ctx context.Context, d *model.Dot) (*model.Dot, error)
	Get(ctx context.Context, ownerID, dotID string) (*model.Dot, error)
	Update(ctx context.Context, d *model.Dot) (*model.Dot, error)
	Delete(ctx context.Context, ownerID, dotID string) error
	Search(ctx context.Context, req model.SearchRequest) ([]*model.Dot, error)
}

type Dashes interface {
	// FindOverlapping returns dashes of the given (owner, timeline, name)
	// intersecting [start, end], ordered by end, then start, then id — the
	// first row is the one whose id survives a merge. The window is
	// expected to be pre-widened by the contiguity buffer.
	FindOverlapping(ctx context.Context, ownerID, timeline, name string, start, end time.Time) ([]*model.Dash, error)

	// FindConflicting returns dashes on the timeline with a name other
	// than excludeName intersecting [start, end], same ordering as
	// FindOverlapping. Used by exclusivity enforcement; no buffer.
	FindConflicting(ctx context.Context, ownerID, timeline, excludeName string, start, end time.Time) ([]*model.Dash, error)

	// Apply upserts every dash in puts (by id) and removes every id in
	// removeIDs as a single atomic batch. A merge is either fully
	// persisted or not at all.
	Apply(ctx context.Context, ownerID string, puts []*model.Dash, removeIDs []string) error

	Get(ctx context.Context, ownerID, dashID string) (*model.Dash, error)
	Delete(ctx context.Context, ownerID, dashID string) error
	Search(ctx context.Context, req model.SearchRequest) ([]*model.Dash, error)
}

type Pendings interface {
	Create(ctx context.Context, p *model.Pending) (*model.Pending, error)
	// FindOne returns the open pending for the exact (owner, timeline,
	// name) key, or ErrNotFound.
	FindOne(ctx context.Context, ownerID, timeline, name string) (*model.Pending, error)
	Delete(ctx context.Context, ownerID, pendingID string) error
	Search(ctx context.Context, req model.SearchRequest) ([]*model.Pending, error)
}
