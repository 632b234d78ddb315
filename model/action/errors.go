package action

import "errors"

var (
	// ErrMalformedCompound is reported when a compound type is not a pair of distinct, non-empty types
	ErrMalformedCompound = errors.New("malformed compound action")
)
