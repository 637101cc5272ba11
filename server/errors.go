package server

import "errors"

var (
	// ErrQuerierRequired is returned when a server is created without a querier.
	ErrQuerierRequired = errors.New("querier is required")

	// ErrInvalidRateLimit is returned for a non-positive rate or burst.
	ErrInvalidRateLimit = errors.New("rate limit and burst must be positive")

	// ErrUnknownFrame is reported to clients that send an unrecognized frame.
	ErrUnknownFrame = errors.New("unknown frame type")
)
