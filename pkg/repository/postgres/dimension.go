package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type dimensionRepository struct {
	repo *Repository
}

// EnsureActor inserts the actor unless its identity is already stored.
// On conflict the insert returns no row and the existing id is selected,
// so concurrent first writes never duplicate a dimension row.
func (r *dimensionRepository) EnsureActor(ctx context.Context, actor *model.Actor) (types.ActorID, error) {
	q := r.repo.q(ctx)

	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO actors (identity, name, members, uid) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identity) DO NOTHING
		 RETURNING id`,
		actor.Identity, actor.Name, actor.Members, actor.OwningUserID).Scan(&id)
	if err == nil {
		return types.ActorID(id), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert actor", goerr.V("cause", err.Error()))
	}

	err = q.QueryRow(ctx, `SELECT id FROM actors WHERE identity = $1`, actor.Identity).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up actor", goerr.V("identity", actor.Identity), goerr.V("cause", err.Error()))
	}
	return types.ActorID(id), nil
}

func (r *dimensionRepository) EnsureVerb(ctx context.Context, verb *model.Verb) (types.VerbID, error) {
	q := r.repo.q(ctx)

	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO verbs (verb_uri, display) VALUES ($1, $2)
		 ON CONFLICT (verb_uri) DO NOTHING
		 RETURNING id`,
		verb.URI, verb.Display).Scan(&id)
	if err == nil {
		return types.VerbID(id), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert verb", goerr.V("cause", err.Error()))
	}

	err = q.QueryRow(ctx, `SELECT id FROM verbs WHERE verb_uri = $1`, verb.URI).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up verb", goerr.V("uri", verb.URI), goerr.V("cause", err.Error()))
	}
	return types.VerbID(id), nil
}

func (r *dimensionRepository) GetActor(ctx context.Context, id types.ActorID) (*model.Actor, error) {
	var actor model.Actor
	err := r.repo.q(ctx).QueryRow(ctx,
		`SELECT id, identity, name, members, uid FROM actors WHERE id = $1`, int64(id)).
		Scan(&actor.ID, &actor.Identity, &actor.Name, &actor.Members, &actor.OwningUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "actor not found", goerr.V("actor_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load actor", goerr.V("actor_id", id), goerr.V("cause", err.Error()))
	}
	return &actor, nil
}

func (r *dimensionRepository) GetVerb(ctx context.Context, id types.VerbID) (*model.Verb, error) {
	var verb model.Verb
	err := r.repo.q(ctx).QueryRow(ctx,
		`SELECT id, verb_uri, display FROM verbs WHERE id = $1`, int64(id)).
		Scan(&verb.ID, &verb.URI, &verb.Display)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "verb not found", goerr.V("verb_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load verb", goerr.V("verb_id", id), goerr.V("cause", err.Error()))
	}
	return &verb, nil
}

func (r *dimensionRepository) EnsureObject(ctx context.Context, object *model.LearningObject) (types.ObjectID, error) {
	q := r.repo.q(ctx)
	hash := object.DedupKey()

	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO objects (object_uri, name, description, choices, correct_responses_pattern, content_id, sub_content_id, dedup_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (dedup_hash) DO NOTHING
		 RETURNING id`,
		object.URI, object.Name, object.Description, object.Choices, object.CorrectResponsesPattern,
		object.ContentID, object.SubContentID, hash).Scan(&id)
	if err == nil {
		return types.ObjectID(id), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert object", goerr.V("cause", err.Error()))
	}

	err = q.QueryRow(ctx, `SELECT id FROM objects WHERE dedup_hash = $1`, hash).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up object", goerr.V("uri", object.URI), goerr.V("cause", err.Error()))
	}
	return types.ObjectID(id), nil
}
