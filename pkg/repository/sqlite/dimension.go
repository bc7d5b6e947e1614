package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type dimensionRepository struct {
	repo *Repository
}

// EnsureActor inserts the actor unless its identity is already stored.
// The unique index on identity makes concurrent first writes safe: the
// loser of the race hits the conflict and falls through to the lookup.
func (r *dimensionRepository) EnsureActor(ctx context.Context, actor *model.Actor) (types.ActorID, error) {
	q := r.repo.q(ctx)

	res, err := q.ExecContext(ctx,
		`INSERT INTO actors (identity, name, members, uid) VALUES (?, ?, ?, ?)
		 ON CONFLICT(identity) DO NOTHING`,
		actor.Identity, actor.Name, actor.Members, nullInt64(actor.OwningUserID))
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert actor", goerr.V("cause", err.Error()))
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, goerr.Wrap(types.ErrPersistence, "failed to read actor id", goerr.V("cause", err.Error()))
		}
		return types.ActorID(id), nil
	}

	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM actors WHERE identity = ?`, actor.Identity).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up actor", goerr.V("identity", actor.Identity), goerr.V("cause", err.Error()))
	}
	return types.ActorID(id), nil
}

func (r *dimensionRepository) EnsureVerb(ctx context.Context, verb *model.Verb) (types.VerbID, error) {
	q := r.repo.q(ctx)

	res, err := q.ExecContext(ctx,
		`INSERT INTO verbs (verb_uri, display) VALUES (?, ?)
		 ON CONFLICT(verb_uri) DO NOTHING`,
		verb.URI, verb.Display)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert verb", goerr.V("cause", err.Error()))
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, goerr.Wrap(types.ErrPersistence, "failed to read verb id", goerr.V("cause", err.Error()))
		}
		return types.VerbID(id), nil
	}

	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM verbs WHERE verb_uri = ?`, verb.URI).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up verb", goerr.V("uri", verb.URI), goerr.V("cause", err.Error()))
	}
	return types.VerbID(id), nil
}

func (r *dimensionRepository) EnsureObject(ctx context.Context, object *model.LearningObject) (types.ObjectID, error) {
	q := r.repo.q(ctx)
	hash := object.DedupKey()

	res, err := q.ExecContext(ctx,
		`INSERT INTO objects (object_uri, name, description, choices, correct_responses_pattern, content_id, sub_content_id, dedup_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dedup_hash) DO NOTHING`,
		object.URI, object.Name, object.Description, object.Choices, object.CorrectResponsesPattern,
		nullString(object.ContentID), nullString(object.SubContentID), hash)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to insert object", goerr.V("cause", err.Error()))
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, goerr.Wrap(types.ErrPersistence, "failed to read object id", goerr.V("cause", err.Error()))
		}
		return types.ObjectID(id), nil
	}

	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM objects WHERE dedup_hash = ?`, hash).Scan(&id)
	if err != nil {
		return 0, goerr.Wrap(types.ErrPersistence, "failed to look up object", goerr.V("uri", object.URI), goerr.V("cause", err.Error()))
	}
	return types.ObjectID(id), nil
}

func (r *dimensionRepository) GetActor(ctx context.Context, id types.ActorID) (*model.Actor, error) {
	var (
		actor model.Actor
		uid   sql.NullInt64
	)
	err := r.repo.q(ctx).QueryRowContext(ctx,
		`SELECT id, identity, name, members, uid FROM actors WHERE id = ?`, int64(id)).
		Scan(&actor.ID, &actor.Identity, &actor.Name, &actor.Members, &uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "actor not found", goerr.V("actor_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load actor", goerr.V("actor_id", id), goerr.V("cause", err.Error()))
	}
	if uid.Valid {
		actor.OwningUserID = &uid.Int64
	}
	return &actor, nil
}

func (r *dimensionRepository) GetVerb(ctx context.Context, id types.VerbID) (*model.Verb, error) {
	var verb model.Verb
	err := r.repo.q(ctx).QueryRowContext(ctx,
		`SELECT id, verb_uri, display FROM verbs WHERE id = ?`, int64(id)).
		Scan(&verb.ID, &verb.URI, &verb.Display)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(types.ErrNotFound, "verb not found", goerr.V("verb_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(types.ErrPersistence, "failed to load verb", goerr.V("verb_id", id), goerr.V("cause", err.Error()))
	}
	return &verb, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
