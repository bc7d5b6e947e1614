package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type summaryRepository struct {
	repo *Repository
}

func (r *summaryRepository) Create(ctx context.Context, summary *model.Summary) (types.SummaryID, error) {
	var id int64
	err := r.repo.q(ctx).QueryRow(ctx,
		`INSERT INTO summaries (actor_id, verb_id, object_id, result_id, recorded_at, raw)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		int64(summary.ActorID), int64(summary.VerbID), int64(summary.ObjectID), int64(summary.ResultID),
		summary.RecordedAt.UTC(), summary.Raw).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert summary", goerr.V("cause", err.Error()))
	}
	return types.SummaryID(id), nil
}

func (r *summaryRepository) Get(ctx context.Context, id types.SummaryID) (*model.Summary, error) {
	var summary model.Summary
	err := r.repo.q(ctx).QueryRow(ctx,
		`SELECT id, actor_id, verb_id, object_id, result_id, recorded_at, raw
		 FROM summaries WHERE id = $1`, int64(id)).
		Scan(&summary.ID, &summary.ActorID, &summary.VerbID, &summary.ObjectID, &summary.ResultID, &summary.RecordedAt, &summary.Raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "summary not found", goerr.V("summary_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load summary", goerr.V("summary_id", id), goerr.V("cause", err.Error()))
	}
	return &summary, nil
}
