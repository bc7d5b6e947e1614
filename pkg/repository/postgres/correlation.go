package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type correlationRepository struct {
	repo *Repository
}

func (r *correlationRepository) Get(ctx context.Context, key string) (types.ResultID, error) {
	var id int64
	err := r.repo.q(ctx).QueryRow(ctx,
		`SELECT result_id FROM correlations WHERE key = $1`, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, goerr.Wrap(types.ErrNotFound, "correlation entry not found", goerr.V("key", key))
	}
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up correlation entry", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return types.ResultID(id), nil
}

// Put stores the entry unless a live one already exists for key. The
// first writer wins so a concurrent claim is never replaced; losers adopt
// the surviving entry via Get.
func (r *correlationRepository) Put(ctx context.Context, key string, id types.ResultID) error {
	_, err := r.repo.q(ctx).Exec(ctx,
		`INSERT INTO correlations (key, result_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO NOTHING`,
		key, int64(id), time.Now().UTC())
	if err != nil {
		return goerr.Wrap(types.ErrPersistence, "failed to store correlation entry", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (r *correlationRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.repo.q(ctx).Exec(ctx, `DELETE FROM correlations WHERE key = $1`, key); err != nil {
		return goerr.Wrap(types.ErrPersistence, "failed to delete correlation entry", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (r *correlationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.repo.q(ctx).Exec(ctx,
		`DELETE FROM correlations WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to prune correlation entries", goerr.V("cause", err.Error()))
	}
	return int(tag.RowsAffected()), nil
}
