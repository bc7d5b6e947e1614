package model

import "github.com/dakala/h5p-xapi/pkg/domain/types"

// Result is the outcome attached to an interaction. A row starts pending
// (all fields at their incomplete defaults) and is finalized at most once
// when a statement carrying outcome data arrives for the same correlation
// key. A pending row that is never finalized is a valid terminal state for
// a "viewed but never scored" interaction.
type Result struct {
	ID          types.ResultID
	Response    *string
	ScoreRaw    *float64
	ScoreScaled *float64
	Completion  bool
	Success     bool
	Duration    *string
}

// HasData reports whether the result carries any outcome worth
// finalizing. A statement whose result is absent or entirely empty leaves
// the pending row untouched.
func (r *Result) HasData() bool {
	if r == nil {
		return false
	}
	return r.Response != nil ||
		r.ScoreRaw != nil ||
		r.ScoreScaled != nil ||
		r.Completion ||
		r.Success ||
		r.Duration != nil
}
