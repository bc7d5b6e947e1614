package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type resultRepository struct {
	store *store
}

func (r *resultRepository) CreatePending(ctx context.Context) (types.ResultID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextResultID++
	id := types.ResultID(s.nextResultID)
	s.results[id] = &model.Result{ID: id}
	return id, nil
}

func (r *resultRepository) Finalize(ctx context.Context, id types.ResultID, result *model.Result) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[id]; !ok {
		return false, nil
	}

	stored := copyResult(result)
	stored.ID = id
	s.results[id] = stored
	return true, nil
}

func (r *resultRepository) Get(ctx context.Context, id types.ResultID) (*model.Result, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "result not found", goerr.V("result_id", id))
	}
	return copyResult(result), nil
}
