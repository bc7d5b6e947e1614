package model

import "github.com/dakala/h5p-xapi/pkg/domain/types"

// Actor is the flattened subject of a statement. Identity is the joined
// inverse functional identifier channels and is the dedup key: a given
// identity maps to at most one stored row.
type Actor struct {
	ID       types.ActorID
	Identity string
	Name     string
	// Members is the flattened member list for groups. Always empty for
	// individual agents, regardless of what the payload carried.
	Members string
	// OwningUserID correlates the actor with the host's authenticated
	// user. Nil when the statement carried no actor object.
	OwningUserID *int64
}

// DedupKey returns the natural identity used for lookup-or-insert.
func (a *Actor) DedupKey() string {
	return a.Identity
}
