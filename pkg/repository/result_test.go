package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

func TestResultRepository(t *testing.T) {
	runBackendTest(t, runResultRepositoryTest)
}

func runResultRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("CreatePending starts with incomplete defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id, err := repo.Results().CreatePending(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, id.IsValid()).True()

		pending, err := repo.Results().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, pending.Response).Nil()
		gt.Value(t, pending.ScoreRaw).Nil()
		gt.Value(t, pending.ScoreScaled).Nil()
		gt.Bool(t, pending.Completion).False()
		gt.Bool(t, pending.Success).False()
		gt.Value(t, pending.Duration).Nil()
		gt.Bool(t, pending.HasData()).False()
	})

	t.Run("Finalize fills the pending row in place", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id, err := repo.Results().CreatePending(ctx)
		gt.NoError(t, err).Required()

		response := "0[,]1"
		raw := 8.0
		scaled := 0.8
		duration := "PT1M12S"
		ok, err := repo.Results().Finalize(ctx, id, &model.Result{
			Response:    &response,
			ScoreRaw:    &raw,
			ScoreScaled: &scaled,
			Completion:  true,
			Success:     true,
			Duration:    &duration,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		final, err := repo.Results().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, final.ID).Equal(id)
		gt.Value(t, *final.Response).Equal("0[,]1")
		gt.Value(t, *final.ScoreRaw).Equal(8.0)
		gt.Value(t, *final.ScoreScaled).Equal(0.8)
		gt.Bool(t, final.Completion).True()
		gt.Bool(t, final.Success).True()
		gt.Value(t, *final.Duration).Equal("PT1M12S")
	})

	t.Run("Finalize on an unknown id reports no update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		response := "x"
		ok, err := repo.Results().Finalize(ctx, types.ResultID(1<<40), &model.Result{Response: &response})
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("Get on an unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Results().Get(ctx, types.ResultID(1<<40))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})
}
