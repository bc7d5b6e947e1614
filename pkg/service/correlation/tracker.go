package correlation

import (
	"context"
	"errors"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// Tracker stitches the two temporally separated statements of one
// interaction together. The first statement of a pair resolves a fresh
// pending result; the second resolves the same id because the mapping is
// still live, and releases it after finalizing.
//
// Tracker holds no state of its own; the backing repository decides
// whether the mapping survives across processes.
type Tracker struct {
	repo interfaces.Repository
}

func NewTracker(repo interfaces.Repository) *Tracker {
	return &Tracker{repo: repo}
}

// Resolve returns the pending result id for key, creating the pending
// result and the mapping when no live entry exists. Calling Resolve while
// an entry is live reuses the existing result id; concurrent first calls
// for one key all resolve to the single entry that won the key.
func (t *Tracker) Resolve(ctx context.Context, key string) (types.ResultID, error) {
	id, err := t.repo.Correlations().Get(ctx, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return 0, err
	}

	id, err = t.repo.Results().CreatePending(ctx)
	if err != nil {
		return 0, err
	}
	if err := t.repo.Correlations().Put(ctx, key, id); err != nil {
		return 0, err
	}

	// Put never replaces a live entry, so a concurrent claimant may have
	// won the key between the lookup and the store. Re-read to adopt
	// whichever entry survived; both claimants then share one result id.
	won, err := t.repo.Correlations().Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return won, nil
}

// Release removes the mapping for key, freeing it for a future unrelated
// interaction. Releasing a key with no live entry is a no-op.
func (t *Tracker) Release(ctx context.Context, key string) error {
	return t.repo.Correlations().Delete(ctx, key)
}
