package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
	"github.com/dakala/h5p-xapi/pkg/utils/logging"
	"github.com/dakala/h5p-xapi/pkg/xapi"
)

// RecordStatement runs one statement through the full pipeline: normalize,
// dedup dimensions, resolve the correlated result, write the summary, and
// release the correlation key when the statement carried outcome data.
//
// All writes happen in one transaction. A failure on any of them rolls the
// whole statement back; a summary row never references a missing
// dimension.
func (uc *UseCases) RecordStatement(ctx context.Context, raw []byte, userID *int64) (*model.Summary, error) {
	uc.count(func() { uc.metrics.Received.Inc() })

	st, err := xapi.ParseStatement(raw)
	if err != nil {
		uc.fail("malformed")
		return nil, err
	}

	normalized := uc.normalizer.Normalize(st, userID)
	key := normalized.CorrelationKey()

	var (
		summary   *model.Summary
		finalized bool
	)
	err = uc.repo.InTx(ctx, func(ctx context.Context) error {
		dims := uc.repo.Dimensions()

		actorID, err := dims.EnsureActor(ctx, &normalized.Actor)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve actor dimension")
		}
		verbID, err := dims.EnsureVerb(ctx, &normalized.Verb)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve verb dimension")
		}
		objectID, err := dims.EnsureObject(ctx, &normalized.Object)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve object dimension")
		}

		resultID, err := uc.tracker.Resolve(ctx, key)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve correlated result", goerr.V("key", key))
		}

		if normalized.Result.HasData() {
			ok, err := uc.repo.Results().Finalize(ctx, resultID, &normalized.Result)
			if err != nil {
				return goerr.Wrap(err, "failed to finalize result", goerr.V("result_id", resultID))
			}
			if !ok {
				return goerr.Wrap(types.ErrPersistence, "correlated result row is missing", goerr.V("result_id", resultID))
			}
			finalized = true
		}

		s := &model.Summary{
			ActorID:    actorID,
			VerbID:     verbID,
			ObjectID:   objectID,
			ResultID:   resultID,
			RecordedAt: uc.now(),
			Raw:        uc.rawForStorage(raw),
		}
		id, err := uc.repo.Summaries().Create(ctx, s)
		if err != nil {
			return goerr.Wrap(err, "failed to write summary")
		}
		s.ID = id
		summary = s
		return nil
	})
	if err != nil {
		uc.fail("persistence")
		return nil, err
	}

	if finalized {
		// The pair is resolved; free the key for a future unrelated
		// interaction. The summary is already committed, so a failure
		// here is logged rather than surfaced as a rejection.
		if err := uc.tracker.Release(ctx, key); err != nil {
			logging.From(ctx).Warn("failed to release correlation key",
				"key", key, "error", err.Error())
		}
	}

	uc.count(func() { uc.metrics.Recorded.Inc() })
	return summary, nil
}

// rawForStorage returns the compacted statement JSON when retention is
// enabled, nil otherwise.
func (uc *UseCases) rawForStorage(raw []byte) []byte {
	if !uc.retainRaw {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func (uc *UseCases) count(inc func()) {
	if uc.metrics != nil {
		inc()
	}
}

func (uc *UseCases) fail(reason string) {
	if uc.metrics != nil {
		uc.metrics.Failed.WithLabelValues(reason).Inc()
	}
}

// IsMalformed reports whether err stems from an unparsable payload rather
// than a storage failure.
func IsMalformed(err error) bool {
	return errors.Is(err, types.ErrMalformedInput)
}
