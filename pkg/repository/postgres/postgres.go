package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
)

// Repository is the PostgreSQL backend for multi-process deployments. The
// correlation namespace is a table in the same database, so the two
// statements of a pair may be handled by different processes and still
// resolve the same pending result.
type Repository struct {
	pool *pgxpool.Pool
}

var _ interfaces.Repository = &Repository{}

// Open connects to the database at dsn, verifies the connection and
// applies the schema.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse postgres DSN")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to ping postgres")
	}

	repo := &Repository{pool: pool}
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Dimensions() interfaces.DimensionRepository {
	return &dimensionRepository{repo: r}
}

func (r *Repository) Results() interfaces.ResultRepository {
	return &resultRepository{repo: r}
}

func (r *Repository) Summaries() interfaces.SummaryRepository {
	return &summaryRepository{repo: r}
}

func (r *Repository) Correlations() interfaces.CorrelationRepository {
	return &correlationRepository{repo: r}
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

type txKey struct{}

// InTx runs fn inside one database transaction carried by the derived
// context.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return goerr.Wrap(err, "failed to rollback transaction", goerr.V("rollback_error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.pool
}
