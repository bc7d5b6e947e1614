package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/repository/memory"
	"github.com/dakala/h5p-xapi/pkg/repository/postgres"
	"github.com/dakala/h5p-xapi/pkg/repository/sqlite"
	"github.com/dakala/h5p-xapi/pkg/utils/logging"
)

// Repository holds CLI flags for the storage backend.
type Repository struct {
	backend     string
	sqlitePath  string
	postgresDSN string
}

// Flags returns CLI flags for repository configuration.
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, postgres or memory)",
			Value:       "sqlite",
			Sources:     cli.EnvVars("H5P_XAPI_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "SQLite database file path",
			Value:       "h5p-xapi.db",
			Sources:     cli.EnvVars("H5P_XAPI_SQLITE_PATH"),
			Destination: &r.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "postgres-dsn",
			Usage:       "PostgreSQL DSN (required when using postgres backend)",
			Sources:     cli.EnvVars("H5P_XAPI_POSTGRES_DSN"),
			Destination: &r.postgresDSN,
		},
	}
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on the returned
// repository. Opening a SQL backend also applies the schema.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "sqlite":
		repo, err := sqlite.Open(r.sqlitePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.sqlitePath)
		return repo, nil

	case "postgres":
		if r.postgresDSN == "" {
			return nil, goerr.New("postgres-dsn is required when using postgres backend")
		}
		repo, err := postgres.Open(ctx, r.postgresDSN)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize postgres repository")
		}
		logging.Default().Info("Using PostgreSQL repository")
		return repo, nil

	case "memory":
		// Correlation state lives in process memory with this backend, so
		// start/completion pairs split across processes will not pair up.
		logging.Default().Warn("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
