package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
)

// Repository is the embedded SQLite backend. It gives real transactional
// isolation for a single-host deployment; the correlation namespace lives
// in the same database file and so survives process restarts.
type Repository struct {
	db *sql.DB
}

var _ interfaces.Repository = &Repository{}

// Open opens (and creates if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string) (*Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to apply pragma", goerr.V("pragma", stmt))
		}
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
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
	return r.db.Close()
}

type txKey struct{}

// InTx begins a transaction and threads it to every repository call made
// through the derived context.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		// Already inside a transaction; SQLite has no nesting.
		return fn(ctx)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return goerr.Wrap(err, "failed to rollback transaction", goerr.V("rollback_error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db
}
