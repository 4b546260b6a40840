package query

import "errors"

// Query API failures. Storage errors are never passed through to
// external callers; they are wrapped under ErrInternal and only the
// taxonomy surfaces at the transport edge.
var (
	// ErrInvalidParams reports malformed request parameters, rejected
	// before any computation.
	ErrInvalidParams = errors.New("invalid query parameters")

	// ErrItemNotFound reports a lookup for an unregistered item.
	ErrItemNotFound = errors.New("item not found")

	// ErrInternal reports a storage failure behind a well-formed query.
	ErrInternal = errors.New("query failed")
)
