package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// LearningObject is the flattened target of a statement. Two objects with
// the same URI but different flattened definition fields are stored as
// distinct rows, so the dedup key is the full five-field tuple.
type LearningObject struct {
	ID          types.ObjectID
	URI         string
	Name        string
	Description string
	Choices     string
	// CorrectResponsesPattern is the flattened "[key]: value" rendering of
	// the definition's correct responses.
	CorrectResponsesPattern string
	// ContentID is extracted from the definition extensions by a
	// configurable key. Nil (not empty) when absent; a missing content id
	// degrades the correlation key rather than failing it.
	ContentID    *string
	SubContentID *string
}

// DedupKey returns a digest of the five-field identity tuple. The raw
// tuple is too wide for a comfortable unique index, so backends index
// this digest instead.
func (o *LearningObject) DedupKey() string {
	h := sha256.New()
	for _, field := range []string{o.URI, o.Name, o.Description, o.Choices, o.CorrectResponsesPattern} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CorrelationKey derives the transient key pairing a start statement with
// its later completion statement for the given actor.
func (o *LearningObject) CorrelationKey(actorName string) string {
	var contentID string
	if o.ContentID != nil {
		contentID = *o.ContentID
	}
	return strings.Join([]string{actorName, contentID}, ":")
}
