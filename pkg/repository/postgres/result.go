package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type resultRepository struct {
	repo *Repository
}

func (r *resultRepository) CreatePending(ctx context.Context) (types.ResultID, error) {
	var id int64
	err := r.repo.q(ctx).QueryRow(ctx,
		`INSERT INTO results (response, score_raw, score_scaled, completion, success, duration)
		 VALUES (NULL, NULL, NULL, FALSE, FALSE, NULL)
		 RETURNING id`).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to create pending result", goerr.V("cause", err.Error()))
	}
	return types.ResultID(id), nil
}

func (r *resultRepository) Finalize(ctx context.Context, id types.ResultID, result *model.Result) (bool, error) {
	tag, err := r.repo.q(ctx).Exec(ctx,
		`UPDATE results SET response = $1, score_raw = $2, score_scaled = $3, completion = $4, success = $5, duration = $6
		 WHERE id = $7`,
		result.Response, result.ScoreRaw, result.ScoreScaled, result.Completion, result.Success, result.Duration, int64(id))
	if err != nil {
		return false, goerr.Wrap(types.ErrPersistence, "failed to finalize result", goerr.V("result_id", id), goerr.V("cause", err.Error()))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *resultRepository) Get(ctx context.Context, id types.ResultID) (*model.Result, error) {
	var result model.Result
	err := r.repo.q(ctx).QueryRow(ctx,
		`SELECT id, response, score_raw, score_scaled, completion, success, duration
		 FROM results WHERE id = $1`, int64(id)).
		Scan(&result.ID, &result.Response, &result.ScoreRaw, &result.ScoreScaled, &result.Completion, &result.Success, &result.Duration)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "result not found", goerr.V("result_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load result", goerr.V("result_id", id), goerr.V("cause", err.Error()))
	}
	return &result, nil
}
