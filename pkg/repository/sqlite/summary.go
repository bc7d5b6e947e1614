package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type summaryRepository struct {
	repo *Repository
}

func (r *summaryRepository) Create(ctx context.Context, summary *model.Summary) (types.SummaryID, error) {
	var raw any
	if summary.Raw != nil {
		raw = summary.Raw
	}

	res, err := r.repo.q(ctx).ExecContext(ctx,
		`INSERT INTO summaries (actor_id, verb_id, object_id, result_id, recorded_at, raw)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		int64(summary.ActorID), int64(summary.VerbID), int64(summary.ObjectID), int64(summary.ResultID),
		summary.RecordedAt.UTC().Format(time.RFC3339Nano), raw)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert summary", goerr.V("cause", err.Error()))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to read summary id", goerr.V("cause", err.Error()))
	}
	return types.SummaryID(id), nil
}

func (r *summaryRepository) Get(ctx context.Context, id types.SummaryID) (*model.Summary, error) {
	var (
		summary    model.Summary
		recordedAt string
		raw        []byte
	)
	err := r.repo.q(ctx).QueryRowContext(ctx,
		`SELECT id, actor_id, verb_id, object_id, result_id, recorded_at, raw
		 FROM summaries WHERE id = ?`, int64(id)).
		Scan(&summary.ID, &summary.ActorID, &summary.VerbID, &summary.ObjectID, &summary.ResultID, &recordedAt, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "summary not found", goerr.V("summary_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load summary", goerr.V("summary_id", id), goerr.V("cause", err.Error()))
	}

	if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
		summary.RecordedAt = t
	}
	summary.Raw = raw
	return &summary, nil
}
