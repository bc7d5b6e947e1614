package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for the ingest pipeline. Every failure surfaced by the
// usecase layer wraps one of these sentinels so callers can map it to a
// response without string matching.
var (
	// ErrMalformedInput means the request carried no statement payload.
	// Missing fields inside a statement are not malformed; they degrade to
	// defaults during normalization.
	ErrMalformedInput = goerr.New("malformed input")

	// ErrUnauthorized means the caller was rejected before any
	// normalization or storage access.
	ErrUnauthorized = goerr.New("unauthorized")

	// ErrPersistence means a dimension, result or summary write or lookup
	// failed. The whole unit of work is rolled back when it occurs.
	ErrPersistence = goerr.New("persistence failure")

	// ErrNotFound is returned by repositories when a row or correlation
	// entry does not exist.
	ErrNotFound = goerr.New("not found")
)
