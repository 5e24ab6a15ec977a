package redis

import "errors"

var (
	// ErrInvalidConnectionURL is returned when the redis URL cannot be
	// parsed.
	ErrInvalidConnectionURL = errors.New("storage.redis.invalid_connection_url")

	// ErrNotReady is returned when the redis server cannot be reached
	// within the configured retry budget.
	ErrNotReady = errors.New("storage.redis.not_ready")

	// ErrMalformedKey is returned when a stored grant key cannot be
	// parsed back into tenant and user ids.
	ErrMalformedKey = errors.New("storage.redis.malformed_key")
)
