package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type correlationRepository struct {
	repo *Repository
}

func (r *correlationRepository) Get(ctx context.Context, key string) (types.ResultID, error) {
	var id int64
	err := r.repo.q(ctx).QueryRowContext(ctx,
		`SELECT result_id FROM correlations WHERE key = ?`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := r.repo.q(ctx).ExecContext(ctx,
		`INSERT INTO correlations (key, result_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		key, int64(id), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return goerr.Wrap(types.ErrPersistence, "failed to store correlation entry", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (r *correlationRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.repo.q(ctx).ExecContext(ctx, `DELETE FROM correlations WHERE key = ?`, key); err != nil {
		return goerr.Wrap(types.ErrPersistence, "failed to delete correlation entry", goerr.V("key", key), goerr.V("cause", err.Error()))
	}
	return nil
}

func (r *correlationRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int, error) {
	res, err := r.repo.q(ctx).ExecContext(ctx,
		`DELETE FROM correlations WHERE created_at < ?`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to prune correlation entries", goerr.V("cause", err.Error()))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to read affected rows", goerr.V("cause", err.Error()))
	}
	return int(n), nil
}
