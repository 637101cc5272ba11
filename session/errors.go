package session

import "errors"

var (
	// ErrQuerierRequired is returned when a controller is created without a querier.
	ErrQuerierRequired = errors.New("querier is required")

	// ErrInvalidDebounce is returned for a negative debounce delay.
	ErrInvalidDebounce = errors.New("debounce delay must not be negative")
)
