package model

import (
	"time"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// CorrelationEntry is the ephemeral mapping from a correlation key to the
// pending result it reserved. At most one live entry exists per key; it is
// deleted once a statement for the same key supplies outcome data. The
// entry is never the sole source of truth for the result's existence.
type CorrelationEntry struct {
	Key       string
	ResultID  types.ResultID
	CreatedAt time.Time
}
