package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type summaryRepository struct {
	store *store
}

func (r *summaryRepository) Create(ctx context.Context, summary *model.Summary) (types.SummaryID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// The summary must reference committed rows only; a dangling
	// reference here means the orchestration skipped a failed dimension.
	if _, ok := s.results[summary.ResultID]; !ok {
		return 0, goerr.Wrap(types.ErrNotFound, "summary references unknown result", goerr.V("result_id", summary.ResultID))
	}

	s.nextSummaryID++
	id := types.SummaryID(s.nextSummaryID)
	stored := copySummary(summary)
	stored.ID = id
	s.summaries[id] = stored
	return id, nil
}

func (r *summaryRepository) Get(ctx context.Context, id types.SummaryID) (*model.Summary, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "summary not found", goerr.V("summary_id", id))
	}
	return copySummary(summary), nil
}
