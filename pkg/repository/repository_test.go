package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/repository/memory"
	"github.com/dakala/h5p-xapi/pkg/repository/postgres"
	"github.com/dakala/h5p-xapi/pkg/repository/sqlite"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	repo, err := postgres.Open(context.Background(), dsn)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

// runBackendTest runs the suite against every available backend.
func runBackendTest(t *testing.T, suite func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	t.Helper()

	t.Run("Memory", func(t *testing.T) {
		suite(t, newMemoryRepository)
	})
	t.Run("SQLite", func(t *testing.T) {
		suite(t, newSQLiteRepository)
	})
	t.Run("Postgres", func(t *testing.T) {
		suite(t, newPostgresRepository)
	})
}
