package mongo

import "errors"

var (
	// ErrFailedToConnect is returned when the document store cannot be
	// reached within the configured retry budget.
	ErrFailedToConnect = errors.New("storage.mongo.failed_to_connect")

	// ErrCorruptDocument is returned when a stored document cannot be
	// mapped back to its domain type.
	ErrCorruptDocument = errors.New("storage.mongo.corrupt_document")
)
