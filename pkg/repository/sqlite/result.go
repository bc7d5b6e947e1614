package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type resultRepository struct {
	repo *Repository
}

func (r *resultRepository) CreatePending(ctx context.Context) (types.ResultID, error) {
	res, err := r.repo.q(ctx).ExecContext(ctx,
		`INSERT INTO results (response, score_raw, score_scaled, completion, success, duration)
		 VALUES (NULL, NULL, NULL, 0, 0, NULL)`)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to create pending result", goerr.V("cause", err.Error()))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to read result id", goerr.V("cause", err.Error()))
	}
	return types.ResultID(id), nil
}

func (r *resultRepository) Finalize(ctx context.Context, id types.ResultID, result *model.Result) (bool, error) {
	res, err := r.repo.q(ctx).ExecContext(ctx,
		`UPDATE results SET response = ?, score_raw = ?, score_scaled = ?, completion = ?, success = ?, duration = ?
		 WHERE id = ?`,
		nullString(result.Response), nullFloat64(result.ScoreRaw), nullFloat64(result.ScoreScaled),
		boolInt(result.Completion), boolInt(result.Success), nullString(result.Duration), int64(id))
	if err != nil {
		return false, goerr.Wrap(types.ErrPersistence, "failed to finalize result", goerr.V("result_id", id), goerr.V("cause", err.Error()))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(types.ErrPersistence, "failed to read affected rows", goerr.V("cause", err.Error()))
	}
	return n > 0, nil
}

func (r *resultRepository) Get(ctx context.Context, id types.ResultID) (*model.Result, error) {
	var (
		result                model.Result
		response, duration    sql.NullString
		scoreRaw, scoreScaled sql.NullFloat64
		completion, success   int
	)
	err := r.repo.q(ctx).QueryRowContext(ctx,
		`SELECT id, response, score_raw, score_scaled, completion, success, duration
		 FROM results WHERE id = ?`, int64(id)).
		Scan(&result.ID, &response, &scoreRaw, &scoreScaled, &completion, &success, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "result not found", goerr.V("result_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load result", goerr.V("result_id", id), goerr.V("cause", err.Error()))
	}

	if response.Valid {
		result.Response = &response.String
	}
	if scoreRaw.Valid {
		result.ScoreRaw = &scoreRaw.Float64
	}
	if scoreScaled.Valid {
		result.ScoreScaled = &scoreScaled.Float64
	}
	if duration.Valid {
		result.Duration = &duration.String
	}
	result.Completion = completion != 0
	result.Success = success != 0
	return &result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
