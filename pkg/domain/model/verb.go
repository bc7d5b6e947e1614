package model

import "github.com/dakala/h5p-xapi/pkg/domain/types"

// Verb is the action of a statement. URI is the dedup key; Display is
// whatever localized label arrived with the first statement for that URI.
type Verb struct {
	ID      types.VerbID
	URI     string
	Display string
}

// DedupKey returns the natural identity used for lookup-or-insert.
func (v *Verb) DedupKey() string {
	return v.URI
}
