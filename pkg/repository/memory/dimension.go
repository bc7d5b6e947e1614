package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

type dimensionRepository struct {
	store *store
}

func (r *dimensionRepository) EnsureActor(ctx context.Context, actor *model.Actor) (types.ActorID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.actorsByKey[actor.DedupKey()]; ok {
		return id, nil
	}

	s.nextActorID++
	id := types.ActorID(s.nextActorID)
	stored := copyActor(actor)
	stored.ID = id
	s.actors[id] = stored
	s.actorsByKey[actor.DedupKey()] = id
	return id, nil
}

func (r *dimensionRepository) EnsureVerb(ctx context.Context, verb *model.Verb) (types.VerbID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.verbsByKey[verb.DedupKey()]; ok {
		return id, nil
	}

	s.nextVerbID++
	id := types.VerbID(s.nextVerbID)
	stored := copyVerb(verb)
	stored.ID = id
	s.verbs[id] = stored
	s.verbsByKey[verb.DedupKey()] = id
	return id, nil
}

func (r *dimensionRepository) GetActor(ctx context.Context, id types.ActorID) (*model.Actor, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	actor, ok := s.actors[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "actor not found", goerr.V("actor_id", id))
	}
	return copyActor(actor), nil
}

func (r *dimensionRepository) GetVerb(ctx context.Context, id types.VerbID) (*model.Verb, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	verb, ok := s.verbs[id]
	if !ok {
		return nil, goerr.Wrap(types.ErrNotFound, "verb not found", goerr.V("verb_id", id))
	}
	return copyVerb(verb), nil
}

func (r *dimensionRepository) EnsureObject(ctx context.Context, object *model.LearningObject) (types.ObjectID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.objectsByKey[object.DedupKey()]; ok {
		return id, nil
	}

	s.nextObjectID++
	id := types.ObjectID(s.nextObjectID)
	stored := copyObject(object)
	stored.ID = id
	s.objects[id] = stored
	s.objectsByKey[object.DedupKey()] = id
	return id, nil
}
