package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

func TestTransactions(t *testing.T) {
	runBackendTest(t, runTransactionTest)
}

func runTransactionTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("writes inside a successful transaction are visible after it", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		key := fmt.Sprintf("tx-commit-%d:42", time.Now().UnixNano())
		var resultID types.ResultID

		err := repo.InTx(ctx, func(ctx context.Context) error {
			id, err := repo.Results().CreatePending(ctx)
			if err != nil {
				return err
			}
			resultID = id
			return repo.Correlations().Put(ctx, key, id)
		})
		gt.NoError(t, err).Required()

		got, err := repo.Correlations().Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(resultID)

		_, err = repo.Results().Get(ctx, resultID)
		gt.NoError(t, err)
	})

	t.Run("a failing transaction rolls every write back", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		key := fmt.Sprintf("tx-rollback-%d:42", time.Now().UnixNano())
		boom := goerr.New("boom")
		var resultID types.ResultID

		err := repo.InTx(ctx, func(ctx context.Context) error {
			id, err := repo.Results().CreatePending(ctx)
			if err != nil {
				return err
			}
			resultID = id
			if err := repo.Correlations().Put(ctx, key, id); err != nil {
				return err
			}
			return boom
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, boom)).True()

		_, err = repo.Correlations().Get(ctx, key)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()

		_, err = repo.Results().Get(ctx, resultID)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("dimension dedup holds inside a transaction", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		identity := fmt.Sprintf("email: mailto:tx-%d@example.com", time.Now().UnixNano())

		outside, err := repo.Dimensions().EnsureActor(ctx, &model.Actor{Identity: identity})
		gt.NoError(t, err).Required()

		err = repo.InTx(ctx, func(ctx context.Context) error {
			inside, err := repo.Dimensions().EnsureActor(ctx, &model.Actor{Identity: identity})
			if err != nil {
				return err
			}
			gt.Value(t, inside).Equal(outside)
			return nil
		})
		gt.NoError(t, err)
	})
}
