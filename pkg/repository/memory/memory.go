package memory

import (
	"context"
	"sync"

	"github.com/dakala/h5p-xapi/pkg/domain/interfaces"
	"github.com/dakala/h5p-xapi/pkg/domain/model"
	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// Repository is the in-memory backend. It is intended for development and
// tests: the correlation namespace lives in process memory, so it does not
// survive across processes.
type Repository struct {
	store *store

	// txMu serializes transactions so a snapshot/restore pair never
	// interleaves with another transaction's writes.
	txMu sync.Mutex
}

var _ interfaces.Repository = &Repository{}

func New() *Repository {
	return &Repository{store: newStore()}
}

func (r *Repository) Dimensions() interfaces.DimensionRepository {
	return &dimensionRepository{store: r.store}
}

func (r *Repository) Results() interfaces.ResultRepository {
	return &resultRepository{store: r.store}
}

func (r *Repository) Summaries() interfaces.SummaryRepository {
	return &summaryRepository{store: r.store}
}

func (r *Repository) Correlations() interfaces.CorrelationRepository {
	return &correlationRepository{store: r.store}
}

// InTx snapshots the whole store and restores it when fn fails. Reads
// outside a transaction may observe uncommitted writes; the SQL backends
// are the ones offering real isolation.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snap := r.store.snapshot()
	if err := fn(ctx); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

func (r *Repository) Close() error {
	return nil
}

// store holds all tables behind one mutex.
type store struct {
	mu sync.RWMutex

	nextActorID   int64
	nextVerbID    int64
	nextObjectID  int64
	nextResultID  int64
	nextSummaryID int64

	actors       map[types.ActorID]*model.Actor
	actorsByKey  map[string]types.ActorID
	verbs        map[types.VerbID]*model.Verb
	verbsByKey   map[string]types.VerbID
	objects      map[types.ObjectID]*model.LearningObject
	objectsByKey map[string]types.ObjectID
	results      map[types.ResultID]*model.Result
	summaries    map[types.SummaryID]*model.Summary
	correlations map[string]*model.CorrelationEntry
}

func newStore() *store {
	return &store{
		actors:       make(map[types.ActorID]*model.Actor),
		actorsByKey:  make(map[string]types.ActorID),
		verbs:        make(map[types.VerbID]*model.Verb),
		verbsByKey:   make(map[string]types.VerbID),
		objects:      make(map[types.ObjectID]*model.LearningObject),
		objectsByKey: make(map[string]types.ObjectID),
		results:      make(map[types.ResultID]*model.Result),
		summaries:    make(map[types.SummaryID]*model.Summary),
		correlations: make(map[string]*model.CorrelationEntry),
	}
}

type storeSnapshot struct {
	nextActorID   int64
	nextVerbID    int64
	nextObjectID  int64
	nextResultID  int64
	nextSummaryID int64

	actors       map[types.ActorID]*model.Actor
	actorsByKey  map[string]types.ActorID
	verbs        map[types.VerbID]*model.Verb
	verbsByKey   map[string]types.VerbID
	objects      map[types.ObjectID]*model.LearningObject
	objectsByKey map[string]types.ObjectID
	results      map[types.ResultID]*model.Result
	summaries    map[types.SummaryID]*model.Summary
	correlations map[string]*model.CorrelationEntry
}

func (s *store) snapshot() *storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &storeSnapshot{
		nextActorID:   s.nextActorID,
		nextVerbID:    s.nextVerbID,
		nextObjectID:  s.nextObjectID,
		nextResultID:  s.nextResultID,
		nextSummaryID: s.nextSummaryID,
		actors:        make(map[types.ActorID]*model.Actor, len(s.actors)),
		actorsByKey:   make(map[string]types.ActorID, len(s.actorsByKey)),
		verbs:         make(map[types.VerbID]*model.Verb, len(s.verbs)),
		verbsByKey:    make(map[string]types.VerbID, len(s.verbsByKey)),
		objects:       make(map[types.ObjectID]*model.LearningObject, len(s.objects)),
		objectsByKey:  make(map[string]types.ObjectID, len(s.objectsByKey)),
		results:       make(map[types.ResultID]*model.Result, len(s.results)),
		summaries:     make(map[types.SummaryID]*model.Summary, len(s.summaries)),
		correlations:  make(map[string]*model.CorrelationEntry, len(s.correlations)),
	}
	for id, a := range s.actors {
		snap.actors[id] = copyActor(a)
	}
	for k, id := range s.actorsByKey {
		snap.actorsByKey[k] = id
	}
	for id, v := range s.verbs {
		snap.verbs[id] = copyVerb(v)
	}
	for k, id := range s.verbsByKey {
		snap.verbsByKey[k] = id
	}
	for id, o := range s.objects {
		snap.objects[id] = copyObject(o)
	}
	for k, id := range s.objectsByKey {
		snap.objectsByKey[k] = id
	}
	for id, r := range s.results {
		snap.results[id] = copyResult(r)
	}
	for id, sm := range s.summaries {
		snap.summaries[id] = copySummary(sm)
	}
	for k, e := range s.correlations {
		entry := *e
		snap.correlations[k] = &entry
	}
	return snap
}

func (s *store) restore(snap *storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextActorID = snap.nextActorID
	s.nextVerbID = snap.nextVerbID
	s.nextObjectID = snap.nextObjectID
	s.nextResultID = snap.nextResultID
	s.nextSummaryID = snap.nextSummaryID
	s.actors = snap.actors
	s.actorsByKey = snap.actorsByKey
	s.verbs = snap.verbs
	s.verbsByKey = snap.verbsByKey
	s.objects = snap.objects
	s.objectsByKey = snap.objectsByKey
	s.results = snap.results
	s.summaries = snap.summaries
	s.correlations = snap.correlations
}

func copyActor(a *model.Actor) *model.Actor {
	copied := *a
	if a.OwningUserID != nil {
		uid := *a.OwningUserID
		copied.OwningUserID = &uid
	}
	return &copied
}

func copyVerb(v *model.Verb) *model.Verb {
	copied := *v
	return &copied
}

func copyObject(o *model.LearningObject) *model.LearningObject {
	copied := *o
	if o.ContentID != nil {
		v := *o.ContentID
		copied.ContentID = &v
	}
	if o.SubContentID != nil {
		v := *o.SubContentID
		copied.SubContentID = &v
	}
	return &copied
}

func copyResult(r *model.Result) *model.Result {
	copied := *r
	if r.Response != nil {
		v := *r.Response
		copied.Response = &v
	}
	if r.ScoreRaw != nil {
		v := *r.ScoreRaw
		copied.ScoreRaw = &v
	}
	if r.ScoreScaled != nil {
		v := *r.ScoreScaled
		copied.ScoreScaled = &v
	}
	if r.Duration != nil {
		v := *r.Duration
		copied.Duration = &v
	}
	return &copied
}

func copySummary(sm *model.Summary) *model.Summary {
	copied := *sm
	if sm.Raw != nil {
		copied.Raw = make([]byte, len(sm.Raw))
		copy(copied.Raw, sm.Raw)
	}
	return &copied
}
