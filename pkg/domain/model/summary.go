package model

import (
	"time"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// Summary is the immutable append-only record linking one actor, verb,
// object and result. Raw holds the original statement JSON only when
// retention is enabled; otherwise it is nil.
type Summary struct {
	ID         types.SummaryID
	ActorID    types.ActorID
	VerbID     types.VerbID
	ObjectID   types.ObjectID
	ResultID   types.ResultID
	RecordedAt time.Time
	Raw        []byte
}
