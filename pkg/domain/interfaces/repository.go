package interfaces

import (
	"context"
	"time"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// Repository defines the persistence boundary. All sub-repositories of one
// Repository share a backend; calls made inside the function passed to
// InTx operate on the same atomic unit of work via the passed context.
type Repository interface {
	Dimensions() DimensionRepository
	Results() ResultRepository
	Summaries() SummaryRepository
	Correlations() CorrelationRepository

	// InTx runs fn inside a single transaction. When fn returns an error
	// every write made through fn's context is rolled back; otherwise all
	// writes commit together.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	Close() error
}

// DimensionRepository provides lookup-or-insert access to the three
// deduplicated dimension tables. Each Ensure returns the existing row's id
// when the entity's dedup key is already stored, and inserts otherwise.
// Implementations must not create duplicate rows under concurrent first
// writes for the same key.
type DimensionRepository interface {
	EnsureActor(ctx context.Context, actor *model.Actor) (types.ActorID, error)
	EnsureVerb(ctx context.Context, verb *model.Verb) (types.VerbID, error)
	EnsureObject(ctx context.Context, object *model.LearningObject) (types.ObjectID, error)

	// GetActor returns the stored actor, or types.ErrNotFound. The
	// non-key fields are whatever the first Ensure for that identity
	// carried.
	GetActor(ctx context.Context, id types.ActorID) (*model.Actor, error)

	// GetVerb returns the stored verb, or types.ErrNotFound. Display is
	// whatever the first Ensure for that URI carried.
	GetVerb(ctx context.Context, id types.VerbID) (*model.Verb, error)
}

// ResultRepository manages the two-phase result lifecycle.
type ResultRepository interface {
	// CreatePending inserts a result row with all fields at their
	// incomplete defaults and returns its id.
	CreatePending(ctx context.Context) (types.ResultID, error)

	// Finalize updates the row in place with the supplied outcome data.
	// It reports whether the row existed and was updated.
	Finalize(ctx context.Context, id types.ResultID, result *model.Result) (bool, error)

	// Get returns the stored result, or types.ErrNotFound.
	Get(ctx context.Context, id types.ResultID) (*model.Result, error)
}

// SummaryRepository appends immutable summary rows.
type SummaryRepository interface {
	Create(ctx context.Context, summary *model.Summary) (types.SummaryID, error)

	// Get returns the stored summary, or types.ErrNotFound.
	Get(ctx context.Context, id types.SummaryID) (*model.Summary, error)
}

// CorrelationRepository is the ephemeral key/value namespace pairing a
// start statement with its completion statement. Entries live until
// explicitly deleted; there is no TTL.
type CorrelationRepository interface {
	// Get returns the live entry's result id, or types.ErrNotFound.
	Get(ctx context.Context, key string) (types.ResultID, error)

	// Put stores the entry unless a live one already exists for key. The
	// first writer wins: a concurrent claim for the same key is never
	// replaced. Callers racing for a key must Get afterwards to learn
	// which entry survived.
	Put(ctx context.Context, key string, id types.ResultID) error

	// Delete removes the entry. Deleting a non-existent key is a no-op.
	Delete(ctx context.Context, key string) error

	// DeleteOlderThan removes entries created before the given time and
	// returns how many were removed. Used only by explicit pruning.
	DeleteOlderThan(ctx context.Context, before time.Time) (int, error)
}
