package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type correlationRepository struct {
	store *store
}

func (r *correlationRepository) Get(ctx context.Context, key string) (types.ResultID, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.correlations[key]
	if !ok {
		return 0, goerr.Wrap(types.ErrNotFound, "correlation entry not found", goerr.V("key", key))
	}
	return entry.ResultID, nil
}

// Put stores the entry unless a live one already exists for key. The
// first writer wins so a concurrent claim is never replaced; losers adopt
// the surviving entry via Get.
func (r *correlationRepository) Put(ctx context.Context, key string, id types.ResultID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.correlations[key]; ok {
		return nil
	}

	s.correlations[key] = &model.CorrelationEntry{
		Key:       key,
		ResultID:  id,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *correlationRepository) Delete(ctx context.Context, key string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.correlations, key)
	return nil
}

func (r *correlationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.correlations {
		if entry.CreatedAt.Before(before) {
			delete(s.correlations, key)
			removed++
		}
	}
	return removed, nil
}
