package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
	"github.com/dakala/h5p-xapi/pkg/metrics"
	"github.com/dakala/h5p-xapi/pkg/repository/memory"
	"github.com/dakala/h5p-xapi/pkg/usecase"
	"github.com/dakala/h5p-xapi/pkg/xapi"
)

const (
	contentIDKey    = "http://h5p.org/x-api/h5p-local-content-id"
	subContentIDKey = "http://h5p.org/x-api/h5p-subContentId"
)

func newTestUseCases(repo interfaces.Repository, opts ...usecase.Option) *usecase.UseCases {
	n := xapi.NewNormalizer("en-US", contentIDKey, subContentIDKey)
	return usecase.New(repo, n, opts...)
}

const attemptedStatement = `{
	"actor": {"name": "Jane", "mbox": "mailto:jane@example.com"},
	"verb": {"id": "http://adlnet.gov/expapi/verbs/attempted", "display": {"en-US": "attempted"}},
	"object": {
		"id": "http://h5p.example/content/42",
		"definition": {
			"name": {"en-US": "Quiz"},
			"extensions": {"http://h5p.org/x-api/h5p-local-content-id": 42}
		}
	}
}`

const answeredStatement = `{
	"actor": {"name": "Jane", "mbox": "mailto:jane@example.com"},
	"verb": {"id": "http://adlnet.gov/expapi/verbs/answered", "display": {"en-US": "answered"}},
	"object": {
		"id": "http://h5p.example/content/42",
		"definition": {
			"name": {"en-US": "Quiz"},
			"extensions": {"http://h5p.org/x-api/h5p-local-content-id": 42}
		}
	},
	"result": {
		"response": "0[,]1",
		"score": {"raw": 8, "scaled": 0.8},
		"completion": true,
		"success": true,
		"duration": "PT1M12S"
	}
}`

func TestRecordStatement(t *testing.T) {
	uid := int64(7)

	t.Run("records a statement without outcome data", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(repo)
		ctx := context.Background()

		summary, err := uc.RecordStatement(ctx, []byte(attemptedStatement), &uid)
		gt.NoError(t, err).Required()
		gt.Bool(t, summary.ID.IsValid()).True()
		gt.Bool(t, summary.ActorID.IsValid()).True()
		gt.Bool(t, summary.VerbID.IsValid()).True()
		gt.Bool(t, summary.ObjectID.IsValid()).True()
		gt.Bool(t, summary.RecordedAt.IsZero()).False()

		// The result is reserved but still pending.
		result, err := repo.Results().Get(ctx, summary.ResultID)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.HasData()).False()

		// The correlation stays live until outcome data arrives.
		id, err := repo.Correlations().Get(ctx, "Jane:42")
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(summary.ResultID)
	})

	t.Run("a start and completion pair shares one result row", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(repo)
		ctx := context.Background()

		started, err := uc.RecordStatement(ctx, []byte(attemptedStatement), &uid)
		gt.NoError(t, err).Required()

		completed, err := uc.RecordStatement(ctx, []byte(answeredStatement), &uid)
		gt.NoError(t, err).Required()

		gt.Value(t, completed.ResultID).Equal(started.ResultID)
		gt.Value(t, completed.ID).NotEqual(started.ID)

		// The statement pair dedups actor and object but not the verbs.
		gt.Value(t, completed.ActorID).Equal(started.ActorID)
		gt.Value(t, completed.ObjectID).Equal(started.ObjectID)
		gt.Value(t, completed.VerbID).NotEqual(started.VerbID)

		result, err := repo.Results().Get(ctx, completed.ResultID)
		gt.NoError(t, err).Required()
		gt.Value(t, *result.Response).Equal("0[,]1")
		gt.Value(t, *result.ScoreRaw).Equal(8.0)
		gt.Value(t, *result.ScoreScaled).Equal(0.8)
		gt.Bool(t, result.Completion).True()
		gt.Bool(t, result.Success).True()

		// Finalizing released the key: a fresh attempt starts over.
		_, err = repo.Correlations().Get(ctx, "Jane:42")
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()

		restarted, err := uc.RecordStatement(ctx, []byte(attemptedStatement), &uid)
		gt.NoError(t, err).Required()
		gt.Value(t, restarted.ResultID).NotEqual(started.ResultID)
	})

	t.Run("malformed payload is rejected before any write", func(t *testing.T) {
		repo := memory.New()
		uc := newTestUseCases(repo)
		ctx := context.Background()

		_, err := uc.RecordStatement(ctx, []byte("{not json"), &uid)
		gt.Error(t, err)
		gt.Bool(t, usecase.IsMalformed(err)).True()

		_, err = repo.Correlations().Get(ctx, "Jane:42")
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("raw statement is retained only when enabled", func(t *testing.T) {
		ctx := context.Background()

		repo := memory.New()
		uc := newTestUseCases(repo, usecase.WithRetainRaw(true))
		summary, err := uc.RecordStatement(ctx, []byte(`{"verb": {"id": "v"}}`), &uid)
		gt.NoError(t, err).Required()

		stored, err := repo.Summaries().Get(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, string(stored.Raw)).Equal(`{"verb":{"id":"v"}}`)

		repo = memory.New()
		uc = newTestUseCases(repo)
		summary, err = uc.RecordStatement(ctx, []byte(`{"verb": {"id": "v"}}`), &uid)
		gt.NoError(t, err).Required()

		stored, err = repo.Summaries().Get(ctx, summary.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, len(stored.Raw)).Equal(0)
	})

	t.Run("clock override stamps the summary", func(t *testing.T) {
		repo := memory.New()
		at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		uc := newTestUseCases(repo, usecase.WithClock(func() time.Time { return at }))

		summary, err := uc.RecordStatement(context.Background(), []byte(attemptedStatement), &uid)
		gt.NoError(t, err).Required()
		gt.Bool(t, summary.RecordedAt.Equal(at)).True()
	})

	t.Run("metrics count received, recorded and failed", func(t *testing.T) {
		repo := memory.New()
		m := metrics.New()
		uc := newTestUseCases(repo, usecase.WithMetrics(m))
		ctx := context.Background()

		_, err := uc.RecordStatement(ctx, []byte(attemptedStatement), &uid)
		gt.NoError(t, err).Required()
		_, err = uc.RecordStatement(ctx, []byte("{not json"), &uid)
		gt.Error(t, err)

		gt.Value(t, testutil.ToFloat64(m.Received)).Equal(2.0)
		gt.Value(t, testutil.ToFloat64(m.Recorded)).Equal(1.0)
		gt.Value(t, testutil.ToFloat64(m.Failed.WithLabelValues("malformed"))).Equal(1.0)
	})
}

// failingSummaryRepo makes every summary write fail so the surrounding
// transaction rolls back.
type failingSummaryRepo struct {
	interfaces.Repository
}

func (r *failingSummaryRepo) Summaries() interfaces.SummaryRepository {
	return &failingSummaries{}
}

type failingSummaries struct{}

func (r *failingSummaries) Create(ctx context.Context, summary *model.Summary) (types.SummaryID, error) {
	return 0, goerr.Wrap(types.ErrPersistence, "summary write refused")
}

func (r *failingSummaries) Get(ctx context.Context, id types.SummaryID) (*model.Summary, error) {
	return nil, goerr.Wrap(types.ErrNotFound, "no summaries here")
}

func TestRecordStatementRollback(t *testing.T) {
	inner := memory.New()
	uc := newTestUseCases(&failingSummaryRepo{Repository: inner})
	ctx := context.Background()

	_, err := uc.RecordStatement(ctx, []byte(attemptedStatement), nil)
	gt.Error(t, err)
	gt.Bool(t, usecase.IsMalformed(err)).False()

	// The rollback swept the pending result and its correlation entry; the
	// next attempt starts from a clean slate.
	_, err = inner.Correlations().Get(ctx, "Jane:42")
	gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
}
